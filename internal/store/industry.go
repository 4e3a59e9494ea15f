package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

const (
	relationAffiliate  = "affiliate"
	relationSubsidiary = "subsidiary"
)

// listingBuckets sums corporations of alias "co" into the ListingCounts
// columns. Rows where co is NULL count nowhere.
const listingBuckets = `
	COUNT(co.id),
	COALESCE(SUM(CASE WHEN co.corp_cls = 'Y' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN co.corp_cls = 'K' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN co.corp_cls = 'N' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN co.corp_cls NOT IN ('Y', 'K', 'N') AND co.audited = 1 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN co.corp_cls NOT IN ('Y', 'K', 'N') AND co.audited = 0 THEN 1 ELSE 0 END), 0)`

func scanCounts(sc scanner, lead ...any) (registry.ListingCounts, error) {
	var c registry.ListingCounts
	dest := append(lead, &c.Total, &c.KOSPI, &c.KOSDAQ, &c.KONEX, &c.Audited, &c.Unaudited)
	err := sc.Scan(dest...)
	return c, err
}

// IndustryInfo counts the corporations of every domain class by listing
// bucket. Rates are shares of the registry-wide bucket totals. Themes are
// not included.
func (s *Store) IndustryInfo(ctx context.Context) (_ []registry.IndustryInfo, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"industry_info", trace.SpanKindInternal)
	defer func() { tracing.End(span, err) }()

	all, err := scanCounts(s.db.QueryRowContext(ctx, `SELECT `+listingBuckets+` FROM corporations co`))
	if err != nil {
		return nil, fmt.Errorf("count corporations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, c.id, c.name,`+listingBuckets+`
		FROM domains d
		JOIN domain_classes dc ON dc.domain_id = d.id AND dc.kind = 'class'
		JOIN industry_classes c ON c.id = dc.class_id
		LEFT JOIN corporation_classes cc ON cc.class_id = c.id
		LEFT JOIN corporations co ON co.corp_code = cc.corp_code
		GROUP BY d.id, c.id
		ORDER BY d.position, d.id, dc.position, c.id`)
	if err != nil {
		return nil, fmt.Errorf("query industry info: %w", err)
	}
	defer rows.Close()

	out := []registry.IndustryInfo{}
	for rows.Next() {
		var in registry.IndustryInfo
		in.Count, err = scanCounts(rows, &in.DomainID, &in.DomainName, &in.IndustryClassID, &in.IndustryClassName)
		if err != nil {
			return nil, fmt.Errorf("scan industry info: %w", err)
		}
		in.Rate = in.Count.RatesOf(all)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate industry info: %w", err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(out)))
	return out, nil
}

// Describe returns the detail page of one corporation with its affiliates,
// subsidiaries and industry classes.
func (s *Store) Describe(ctx context.Context, corpCode string) (_ registry.CorporationDescription, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"describe", trace.SpanKindInternal)
	defer func() { tracing.End(span, err) }()

	row, err := s.Corporation(ctx, corpCode)
	if err != nil {
		return registry.CorporationDescription{}, err
	}
	d := registry.CorporationDescription{OverviewRow: row}

	var (
		cls         string
		employees   sql.NullInt64
		smallMedium sql.NullBool
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT corp_name, corp_name_eng, corp_cls, phone, acc_mt, main_business, employees, small_medium,
			kospi_list_date, kospi_delist_date, kosdaq_list_date, kosdaq_delist_date,
			konex_list_date, konex_delist_date
		FROM corporations WHERE corp_code = ?`, corpCode).Scan(
		&d.CorpName, &d.CorpNameEng, &cls, &d.Phone, &d.AccountingMonth, &d.MainBusiness, &employees, &smallMedium,
		&d.KOSPI.ListDate, &d.KOSPI.DelistDate, &d.KOSDAQ.ListDate, &d.KOSDAQ.DelistDate,
		&d.KONEX.ListDate, &d.KONEX.DelistDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.CorporationDescription{}, fmt.Errorf("corporation %s: %w", corpCode, ErrNotFound)
	}
	if err != nil {
		return registry.CorporationDescription{}, fmt.Errorf("scan corporation detail: %w", err)
	}
	d.CorpClass = registry.ParseListingClass(cls)
	if employees.Valid {
		n := int(employees.Int64)
		d.Employees = &n
	}
	if smallMedium.Valid {
		d.SmallMedium = &smallMedium.Bool
	}

	if d.Affiliates, err = s.relations(ctx, corpCode, relationAffiliate); err != nil {
		return registry.CorporationDescription{}, err
	}
	if d.Subsidiaries, err = s.relations(ctx, corpCode, relationSubsidiary); err != nil {
		return registry.CorporationDescription{}, err
	}
	if d.Classes, err = s.corporationClasses(ctx, corpCode); err != nil {
		return registry.CorporationDescription{}, err
	}
	return d, nil
}

func (s *Store) relations(ctx context.Context, corpCode, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM corporation_relations WHERE corp_code = ? AND kind = ? ORDER BY position, name`,
		corpCode, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s list: %w", kind, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) corporationClasses(ctx context.Context, corpCode string) ([]diagram.IndustryClass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.code, c.name
		FROM corporation_classes cc
		JOIN industry_classes c ON c.id = cc.class_id
		WHERE cc.corp_code = ?
		ORDER BY c.code, c.id`, corpCode)
	if err != nil {
		return nil, fmt.Errorf("query corporation classes: %w", err)
	}
	defer rows.Close()

	out := []diagram.IndustryClass{}
	for rows.Next() {
		var c diagram.IndustryClass
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan corporation class: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
