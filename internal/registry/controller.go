package registry

// PageSize is the fixed number of rows per page.
const PageSize = 20

// State of the list controller.
type State int

const (
	StateIdle State = iota
	StateViewing
)

func (s State) String() string {
	if s == StateViewing {
		return "viewing"
	}
	return "idle"
}

// Controller holds the list screen's search and paging state. Every
// operation is a synchronous state transition; fetching is left to the
// caller, which renders the state with Query and feeds results to Load.
type Controller struct {
	state       State
	category    Category
	keyword     string
	currentPage int
	totalRows   int
	rows        []OverviewRow
}

// NewController returns an idle controller on page 1.
func NewController() *Controller {
	return &Controller{
		category:    DefaultCategory,
		currentPage: 1,
	}
}

func (c *Controller) State() State       { return c.state }
func (c *Controller) Category() Category { return c.category }
func (c *Controller) Keyword() string    { return c.keyword }
func (c *Controller) CurrentPage() int   { return c.currentPage }
func (c *Controller) TotalRows() int     { return c.totalRows }

// Rows returns the rows of the current page.
func (c *Controller) Rows() []OverviewRow {
	out := make([]OverviewRow, len(c.rows))
	copy(out, c.rows)
	return out
}

// PageCount is ceil(totalRows / PageSize).
func (c *Controller) PageCount() int {
	return (c.totalRows + PageSize - 1) / PageSize
}

// SetCategory changes the search category and returns to page 1. It reports
// whether anything changed; unknown categories are ignored.
func (c *Controller) SetCategory(cat Category) bool {
	if !cat.Valid() || cat == c.category {
		return false
	}
	c.category = cat
	c.currentPage = 1
	return true
}

// SetKeyword changes the keyword and returns to page 1.
func (c *Controller) SetKeyword(keyword string) bool {
	if keyword == c.keyword {
		return false
	}
	c.keyword = keyword
	c.currentPage = 1
	return true
}

// GoToPage moves to page n clamped into [1, max(1, PageCount)] and returns
// the resulting page.
func (c *Controller) GoToPage(n int) int {
	c.currentPage = c.clamp(n)
	return c.currentPage
}

// NextPage advances one page, staying on the last.
func (c *Controller) NextPage() int { return c.GoToPage(c.currentPage + 1) }

// PrevPage goes back one page, staying on the first.
func (c *Controller) PrevPage() int { return c.GoToPage(c.currentPage - 1) }

// Load installs a fetched page. It reports whether the current page had to
// move because the total shrank.
func (c *Controller) Load(data OverviewListData) bool {
	c.state = StateViewing
	c.totalRows = max(data.Length, 0)
	rows := data.Data
	if len(rows) > PageSize {
		rows = rows[:PageSize]
	}
	c.rows = make([]OverviewRow, len(rows))
	copy(c.rows, rows)

	before := c.currentPage
	c.currentPage = c.clamp(c.currentPage)
	return before != c.currentPage
}

// Query renders the state for a data source.
func (c *Controller) Query() Query {
	return Query{
		Category: c.category,
		Keyword:  c.keyword,
		Page:     c.currentPage,
		Limit:    PageSize,
	}
}

func (c *Controller) clamp(n int) int {
	return min(max(n, 1), max(1, c.PageCount()))
}
