package pagination

const (
	// DefaultPageSize is the page size used when none is provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any page can request.
	MaxPageSize = 100
)

// Params holds page/offset pagination inputs from controllers or services.
// Pages are 1-based.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces the configured default and maximum sizes.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Slice applies the page window to items. A page beyond the available range
// yields an empty slice, not an error.
func Slice[T any](items []T, p Params) []T {
	p = p.Normalize()
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
