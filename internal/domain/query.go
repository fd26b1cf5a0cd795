package domain

// SortOption selects the ordering of the derived event view.
type SortOption string

const (
	SortDateAsc  SortOption = "date-asc"
	SortDateDesc SortOption = "date-desc"
	SortTitleAZ  SortOption = "title-az"
)

// Known reports whether o is one of the recognised sort options.
// Unrecognised options are not an error: they leave the order untouched.
func (o SortOption) Known() bool {
	switch o {
	case SortDateAsc, SortDateDesc, SortTitleAZ:
		return true
	}
	return false
}

// Query carries the current search and filter inputs from the HTTP layer
// to the query pipeline. Empty fields match everything.
type Query struct {
	Search string
	City   string
	Type   string
	Sort   SortOption
}

// Facets lists the distinct cities and event types present in the full,
// unfiltered collection. Both slices are sorted ascending and never nil.
type Facets struct {
	Cities []string `json:"cities"`
	Types  []string `json:"types"`
}
