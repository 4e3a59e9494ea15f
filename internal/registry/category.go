package registry

import "fmt"

// Category selects the column a keyword search matches against.
type Category string

const (
	CategoryCorpName  Category = "corpName"
	CategoryFirmName  Category = "firmName"
	CategoryBizrNo    Category = "bizrNo"
	CategoryJurirNo   Category = "jurirNo"
	CategoryStockCode Category = "stockCode"
)

// DefaultCategory is the category a fresh controller searches by.
const DefaultCategory = CategoryCorpName

var categories = []Category{
	CategoryCorpName,
	CategoryFirmName,
	CategoryBizrNo,
	CategoryJurirNo,
	CategoryStockCode,
}

var categoryLabels = map[Category]string{
	CategoryCorpName:  "Corp name",
	CategoryFirmName:  "Firm name",
	CategoryBizrNo:    "Business no.",
	CategoryJurirNo:   "Corporate no.",
	CategoryStockCode: "Stock code",
}

// Categories returns every category in selector order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts a category name. The empty string maps to the
// default.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return DefaultCategory, nil
	}
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("unknown search category %q", s)
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns a display name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Next cycles to the following category in selector order.
func (c Category) Next() Category {
	for i, cat := range categories {
		if cat == c {
			return categories[(i+1)%len(categories)]
		}
	}
	return DefaultCategory
}
