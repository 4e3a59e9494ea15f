package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

// Domains returns every classification domain with its classes and themes
// in display order.
func (s *Store) Domains(ctx context.Context) (_ []diagram.ClassificationDomain, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"domains", trace.SpanKindInternal)
	defer func() { tracing.End(span, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, contents FROM domains ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()

	domains := []diagram.ClassificationDomain{}
	index := map[int]int{}
	for rows.Next() {
		var (
			d        diagram.ClassificationDomain
			contents string
		)
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &contents); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		if err := json.Unmarshal([]byte(contents), &d.Contents); err != nil {
			return nil, fmt.Errorf("domain %d contents: %w", d.ID, err)
		}
		d.Classes = []diagram.IndustryClass{}
		d.Themes = []diagram.IndustryClass{}
		index[d.ID] = len(domains)
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}
	rows.Close()

	members, err := s.db.QueryContext(ctx, `
		SELECT dc.domain_id, dc.kind, c.id, c.code, c.name
		FROM domain_classes dc
		JOIN industry_classes c ON c.id = dc.class_id
		ORDER BY dc.domain_id, dc.kind, dc.position, c.id`)
	if err != nil {
		return nil, fmt.Errorf("query domain classes: %w", err)
	}
	defer members.Close()

	for members.Next() {
		var (
			domainID int
			kind     string
			c        diagram.IndustryClass
		)
		if err := members.Scan(&domainID, &kind, &c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan domain class: %w", err)
		}
		i, ok := index[domainID]
		if !ok {
			continue
		}
		if kind == kindTheme {
			domains[i].Themes = append(domains[i].Themes, c)
		} else {
			domains[i].Classes = append(domains[i].Classes, c)
		}
	}
	if err := members.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain classes: %w", err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(domains)))
	return domains, nil
}

// IndustryClasses returns every industry class ordered by code.
func (s *Store) IndustryClasses(ctx context.Context) (_ []diagram.IndustryClass, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanPrefixStore+"industry_classes", trace.SpanKindInternal)
	defer func() { tracing.End(span, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name FROM industry_classes ORDER BY code, id`)
	if err != nil {
		return nil, fmt.Errorf("query industry classes: %w", err)
	}
	defer rows.Close()

	out := []diagram.IndustryClass{}
	for rows.Next() {
		var c diagram.IndustryClass
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan industry class: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
