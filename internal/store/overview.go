package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

// DefaultLimit and MaxLimit bound Overview page sizes.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var categoryColumns = map[registry.Category]string{
	registry.CategoryCorpName:  "corp_name",
	registry.CategoryFirmName:  "firm_name",
	registry.CategoryBizrNo:    "bizr_no",
	registry.CategoryJurirNo:   "jurir_no",
	registry.CategoryStockCode: "stock_code",
}

const corporationColumns = `id, corp_code, firm_name, bizr_no, jurir_no, stock_code,
	conglomerate_name, ceo_name, establish_date, adress1, adress2, homepage`

func columnFor(c registry.Category) (string, error) {
	if c == "" {
		c = registry.DefaultCategory
	}
	col, ok := categoryColumns[c]
	if !ok {
		return "", fmt.Errorf("unknown search category %q", c)
	}
	return col, nil
}

// likePattern escapes LIKE wildcards in s.
func likePattern(s, prefix, suffix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return prefix + r.Replace(s) + suffix
}

// Overview returns one page of corporations whose category column contains
// the keyword, ordered by id.
func (s *Store) Overview(ctx context.Context, q registry.Query) (out registry.OverviewListData, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"overview", trace.SpanKindInternal,
		attribute.String(tracing.AttrCategory, string(q.Category)),
		attribute.Int(tracing.AttrPage, q.Page),
	)
	defer func() { tracing.End(span, err) }()

	col, err := columnFor(q.Category)
	if err != nil {
		return registry.OverviewListData{}, err
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	q.Limit = min(q.Limit, MaxLimit)
	if q.Page < 1 {
		q.Page = 1
	}

	where := ""
	var args []any
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		where = fmt.Sprintf(` WHERE %s LIKE ? ESCAPE '\'`, col)
		args = append(args, likePattern(kw, "%", "%"))
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corporations`+where, args...).Scan(&out.Length); err != nil {
		return registry.OverviewListData{}, fmt.Errorf("count corporations: %w", err)
	}

	query := `SELECT ` + corporationColumns + ` FROM corporations` + where + ` ORDER BY id LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return registry.OverviewListData{}, fmt.Errorf("query corporations: %w", err)
	}
	defer rows.Close()

	out.Data = []registry.OverviewRow{}
	for rows.Next() {
		row, err := scanCorporation(rows)
		if err != nil {
			return registry.OverviewListData{}, err
		}
		out.Data = append(out.Data, row)
	}
	if err := rows.Err(); err != nil {
		return registry.OverviewListData{}, fmt.Errorf("iterate corporations: %w", err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(out.Data)))
	return out, nil
}

// Suggest returns up to registry.MaxSuggestions corporations whose category
// column starts with term.
func (s *Store) Suggest(ctx context.Context, term string, category registry.Category) (_ []registry.SearchItem, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"suggest", trace.SpanKindInternal)
	defer func() { tracing.End(span, err) }()

	col, err := columnFor(category)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT corp_code, firm_name FROM corporations WHERE %s LIKE ? ESCAPE '\' ORDER BY %s LIMIT ?`, col, col),
		likePattern(strings.TrimSpace(term), "", "%"), registry.MaxSuggestions,
	)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	items := []registry.SearchItem{}
	for rows.Next() {
		var it registry.SearchItem
		if err := rows.Scan(&it.CorpCode, &it.FirmName); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Corporation looks up one corporation by its corp code.
func (s *Store) Corporation(ctx context.Context, corpCode string) (_ registry.OverviewRow, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"corporation", trace.SpanKindInternal)
	defer func() { tracing.End(span, err) }()

	row := s.db.QueryRowContext(ctx, `SELECT `+corporationColumns+` FROM corporations WHERE corp_code = ?`, corpCode)
	r, err := scanCorporation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.OverviewRow{}, fmt.Errorf("corporation %s: %w", corpCode, ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCorporation(sc scanner) (registry.OverviewRow, error) {
	var (
		r            registry.OverviewRow
		id           int
		conglomerate sql.NullString
		homepage     sql.NullString
	)
	err := sc.Scan(&id, &r.CorpCode, &r.FirmName, &r.BizrNo, &r.JurirNo, &r.StockCode,
		&conglomerate, &r.CeoName, &r.EstablishDate, &r.Adress1, &r.Adress2, &homepage)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("scan corporation: %w", err)
	}
	r.ID = &id
	if conglomerate.Valid {
		r.ConglomerateName = &conglomerate.String
	}
	if homepage.Valid {
		r.Homepage = &homepage.String
	}
	return r, nil
}
