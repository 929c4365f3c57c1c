package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the resolved page returned alongside results.
type Page struct {
	Current  int `json:"currentPage"`
	LastPage int `json:"lastPage"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage coerces page numbers to a 1-based value.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Normalize returns params with both fields coerced into range.
func Normalize(p Params) Params {
	return Params{
		Page:  NormalizePage(p.Page),
		Limit: NormalizeLimit(p.Limit),
	}
}

// Offset converts the normalized params into a SQL offset.
func Offset(p Params) int {
	p = Normalize(p)
	return (p.Page - 1) * p.Limit
}

// Resolve computes the page descriptor for a total row count.
func Resolve(p Params, total int64) Page {
	p = Normalize(p)
	last := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	if last < 1 {
		last = 1
	}
	return Page{Current: p.Page, LastPage: last}
}
