// Package query derives the filtered, sorted event view and the filter
// facets from a snapshot of the event collection.
// Every function here is pure: inputs are never modified and results are
// recomputed on each call.
package query

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/qalakaar/gigboard/internal/domain"
)

// Pipeline applies filters and sort options using a fixed collation
// language for title ordering.
// The zero value is not usable; construct with New.
type Pipeline struct {
	lang language.Tag
}

// New returns a Pipeline that orders titles according to lang.
func New(lang language.Tag) Pipeline {
	return Pipeline{lang: lang}
}

// Apply filters events by q and orders the result by q.Sort.
// It always returns a non-nil slice so callers can encode it as [] rather than null.
func (p Pipeline) Apply(events []domain.Event, q domain.Query) []domain.Event {
	return p.Sort(Filter(events, q), q.Sort)
}

// Filter returns the events matching every condition of q:
//   - Search is a case-insensitive substring of Title, Venue or City
//   - City, if set, equals the event city exactly
//   - Type, if set, equals the event type exactly
func Filter(events []domain.Event, q domain.Query) []domain.Event {
	// cases.Caser keeps internal state, so each call gets its own.
	// Plain lowercasing: "ß" does not expand to "ss".
	fold := cases.Lower(language.Und)
	needle := fold.String(q.Search)

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if q.City != "" && e.City != q.City {
			continue
		}
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(e.Title), needle) &&
			!strings.Contains(fold.String(e.Venue), needle) &&
			!strings.Contains(fold.String(e.City), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sort returns a copy of events ordered by opt. The sort is stable, and an
// unrecognised option returns the events in their original order.
func (p Pipeline) Sort(events []domain.Event, opt domain.SortOption) []domain.Event {
	out := make([]domain.Event, len(events))
	copy(out, events)

	switch opt {
	case domain.SortDateAsc:
		slices.SortStableFunc(out, func(a, b domain.Event) int {
			return a.Date.Compare(b.Date)
		})
	case domain.SortDateDesc:
		slices.SortStableFunc(out, func(a, b domain.Event) int {
			return b.Date.Compare(a.Date)
		})
	case domain.SortTitleAZ:
		// Collators are not safe for concurrent use.
		c := collate.New(p.lang)
		slices.SortStableFunc(out, func(a, b domain.Event) int {
			return c.CompareString(a.Title, b.Title)
		})
	}
	return out
}

// Cities returns the distinct cities across events, sorted ascending.
func Cities(events []domain.Event) []string {
	return distinct(events, func(e domain.Event) string { return e.City })
}

// Types returns the distinct event types across events, sorted ascending.
func Types(events []domain.Event) []string {
	return distinct(events, func(e domain.Event) string { return e.Type })
}

// FacetsOf bundles Cities and Types for the filter dropdowns.
func FacetsOf(events []domain.Event) domain.Facets {
	return domain.Facets{Cities: Cities(events), Types: Types(events)}
}

func distinct(events []domain.Event, field func(domain.Event) string) []string {
	seen := make(map[string]struct{}, len(events))
	out := []string{}
	for _, e := range events {
		v := field(e)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
