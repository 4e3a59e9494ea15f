package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateClass is returned when a class or theme ID repeats within
// one sequence.
var ErrDuplicateClass = errors.New("duplicate industry class id")

// IndustryClass is one entry of either classification dimension.
type IndustryClass struct {
	ID   int    `json:"industryClassId"`
	Code int    `json:"industryClassCode"`
	Name string `json:"industryClassName"`
}

// ClassificationDomain is the top level classification entity a node
// displays. Classes and Themes are in display order.
type ClassificationDomain struct {
	ID       int               `json:"domainId"`
	Code     int               `json:"domainCode"`
	Name     string            `json:"domainName"`
	Classes  []IndustryClass   `json:"classes"`
	Themes   []IndustryClass   `json:"themes"`
	Contents []json.RawMessage `json:"contents"`
}

// Validate reports repeated IDs inside Classes or inside Themes.
// The same ID may appear once in each sequence.
func (d ClassificationDomain) Validate() error {
	if err := uniqueIDs(d.Classes); err != nil {
		return fmt.Errorf("domain %d classes: %w", d.ID, err)
	}
	if err := uniqueIDs(d.Themes); err != nil {
		return fmt.Errorf("domain %d themes: %w", d.ID, err)
	}
	return nil
}

func uniqueIDs(items []IndustryClass) error {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateClass, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// normalized returns a copy whose sequences are never nil and share no
// backing arrays with d. Absent sequences become empty ones.
func (d ClassificationDomain) normalized() ClassificationDomain {
	out := d
	out.Classes = cloneClasses(d.Classes)
	out.Themes = cloneClasses(d.Themes)
	out.Contents = slices.Clone(d.Contents)
	return out
}

func cloneClasses(items []IndustryClass) []IndustryClass {
	if items == nil {
		return []IndustryClass{}
	}
	return slices.Clone(items)
}
