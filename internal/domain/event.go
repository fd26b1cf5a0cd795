// Package domain contains the core data types for the gig board service.
// It has no dependencies on other internal packages and is imported by
// every one of them (repo, query, service, handler).
package domain

import (
	"strings"
	"time"
)

// Event is a single scheduled music event.
// The JSON tags define the persisted slot layout as well as the API shape,
// so renaming one is a storage format change.
type Event struct {
	ID      int64     `json:"id"`
	Date    time.Time `json:"date"`
	Title   string    `json:"title"`
	Venue   string    `json:"venue"`
	City    string    `json:"city"`
	Type    string    `json:"type"`
	Details string    `json:"details"`
	AllAges bool      `json:"allAges"`
}

// Day returns the day of the month of the event date in UTC.
func (e Event) Day() int {
	return e.Date.UTC().Day()
}

// MonthAbbrev returns the upper-case three-letter month of the event date
// in UTC, e.g. "OCT".
func (e Event) MonthAbbrev() string {
	return strings.ToUpper(e.Date.UTC().Format("Jan"))
}

// Draft is what the event form submits.
// ID is nil for a new event and set when an existing event is edited.
type Draft struct {
	ID      *int64
	Date    time.Time
	Title   string
	Venue   string
	City    string
	Type    string
	Details string
	AllAges bool
}

// Event converts the draft into an Event carrying the given id.
// The date is stored in UTC.
func (d Draft) Event(id int64) Event {
	return Event{
		ID:      id,
		Date:    d.Date.UTC(),
		Title:   d.Title,
		Venue:   d.Venue,
		City:    d.City,
		Type:    d.Type,
		Details: d.Details,
		AllAges: d.AllAges,
	}
}

// DraftFrom returns a draft that edits e.
func DraftFrom(e Event) Draft {
	id := e.ID
	return Draft{
		ID:      &id,
		Date:    e.Date,
		Title:   e.Title,
		Venue:   e.Venue,
		City:    e.City,
		Type:    e.Type,
		Details: e.Details,
		AllAges: e.AllAges,
	}
}
