package registry

import (
	"context"
	"errors"

	"github.com/greta-mvc/flowmap/internal/diagram"
)

// Source supplies registry and classification data. Both the HTTP client
// and the local store implement it.
type Source interface {
	Overview(ctx context.Context, q Query) (OverviewListData, error)
	Suggest(ctx context.Context, term string, category Category) ([]SearchItem, error)
	Corporation(ctx context.Context, corpCode string) (OverviewRow, error)
	Domains(ctx context.Context) ([]diagram.ClassificationDomain, error)
	IndustryClasses(ctx context.Context) ([]diagram.IndustryClass, error)
	IndustryInfo(ctx context.Context) ([]IndustryInfo, error)
	Describe(ctx context.Context, corpCode string) (CorporationDescription, error)
}

// ErrNotFound is matched by every Source when a lookup finds nothing.
var ErrNotFound = errors.New("not found")

// MaxSuggestions caps Suggest results.
const MaxSuggestions = 20
