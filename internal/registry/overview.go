package registry

// OverviewRow is one firm in the registry listing.
type OverviewRow struct {
	ID               *int    `json:"id,omitempty"`
	CorpCode         string  `json:"corpCode"`
	FirmName         string  `json:"firmName"`
	BizrNo           string  `json:"bizrNo"`
	JurirNo          string  `json:"jurirNo"`
	StockCode        string  `json:"stockCode"`
	ConglomerateName *string `json:"conglomerateName"`
	CeoName          string  `json:"ceoName"`
	EstablishDate    string  `json:"establishDate"`
	Adress1          string  `json:"adress1"`
	Adress2          string  `json:"adress2"`
	Homepage         *string `json:"homepage,omitempty"`
}

// Conglomerate returns the conglomerate name or "-".
func (r OverviewRow) Conglomerate() string {
	return orDash(r.ConglomerateName)
}

// HomepageOrDash returns the homepage or "-".
func (r OverviewRow) HomepageOrDash() string {
	return orDash(r.Homepage)
}

// Address joins both address lines.
func (r OverviewRow) Address() string {
	switch {
	case r.Adress1 == "":
		return r.Adress2
	case r.Adress2 == "":
		return r.Adress1
	default:
		return r.Adress1 + " " + r.Adress2
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// OverviewListData is one page of rows plus the total match count.
type OverviewListData struct {
	Length int           `json:"length"`
	Data   []OverviewRow `json:"data"`
}

// SearchItem is a lightweight name match used for suggestions.
type SearchItem struct {
	CorpCode string `json:"corpCode"`
	FirmName string `json:"firmName"`
}

// Query is the state a data source needs to produce one page.
type Query struct {
	Category Category
	Keyword  string
	Page     int
	Limit    int
}

// Offset returns the number of rows to skip.
func (q Query) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
