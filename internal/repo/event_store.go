package repo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/qalakaar/gigboard/internal/domain"
)

// DefaultSlotKey is the slot the event collection is stored under unless
// configured otherwise.
const DefaultSlotKey = "qalakaar_events"

// SeedEvents returns the collection written to an empty slot on first load.
func SeedEvents() []domain.Event {
	return []domain.Event{
		{
			ID:      1,
			Date:    time.Date(2025, 10, 15, 19, 0, 0, 0, time.UTC),
			Title:   "Acoustic Night",
			Venue:   "The Melody Makers",
			City:    "New York",
			Type:    "Acoustic",
			AllAges: true,
			Details: "An intimate evening of acoustic performances. Featuring a lineup of talented singer-songwriters.",
		},
		{
			ID:      2,
			Date:    time.Date(2025, 11, 5, 20, 0, 0, 0, time.UTC),
			Title:   "Rock Fest 2025",
			Venue:   "The Grand Arena",
			City:    "Los Angeles",
			Type:    "Rock",
			AllAges: false,
			Details: "The biggest rock festival of the year! Featuring headliners and up-and-coming rock bands.",
		},
	}
}

// EventStore reads and writes the whole event collection as a JSON array
// in a single slot.
//
// Neither Load nor Save returns an error: failures are logged and the
// caller carries on with its in-memory collection.
type EventStore struct {
	slot Slot
	key  string
	log  *slog.Logger
}

// NewEventStore constructs an EventStore over slot, using key as the slot
// name. A nil logger falls back to slog.Default().
func NewEventStore(slot Slot, key string, log *slog.Logger) *EventStore {
	if key == "" {
		key = DefaultSlotKey
	}
	if log == nil {
		log = slog.Default()
	}
	return &EventStore{slot: slot, key: key, log: log}
}

// Load returns the stored collection.
//   - Empty slot: the seed collection is saved and returned.
//   - Unreadable or corrupt slot: the failure is logged and an empty
//     collection is returned.
//
// The result is never nil.
func (s *EventStore) Load(ctx context.Context) []domain.Event {
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			seed := SeedEvents()
			s.log.InfoContext(ctx, "event slot empty, seeding", "slot", s.key, "count", len(seed))
			s.Save(ctx, seed)
			return seed
		}
		s.log.ErrorContext(ctx, "could not read events", "slot", s.key, "error", err)
		return []domain.Event{}
	}

	var events []domain.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		s.log.ErrorContext(ctx, "could not decode events", "slot", s.key, "error", err)
		return []domain.Event{}
	}
	if events == nil {
		// A stored JSON null decodes to a nil slice.
		events = []domain.Event{}
	}
	return s.normalize(ctx, events)
}

// normalize converts dates to UTC and gives every event a unique ID.
// Collections written by the browser app can repeat an ID; the first event
// keeps it and later ones are moved above the largest ID in the collection.
// If no ID is left above it, the duplicate is dropped.
func (s *EventStore) normalize(ctx context.Context, events []domain.Event) []domain.Event {
	var top int64
	for _, e := range events {
		top = max(top, e.ID)
	}

	seen := make(map[int64]bool, len(events))
	out := events[:0]
	for _, e := range events {
		e.Date = e.Date.UTC()
		if seen[e.ID] {
			if top == math.MaxInt64 {
				s.log.WarnContext(ctx, "dropping event with duplicate id", "slot", s.key, "id", e.ID, "title", e.Title)
				continue
			}
			top++
			s.log.WarnContext(ctx, "reassigning duplicate event id", "slot", s.key, "id", e.ID, "new_id", top)
			e.ID = top
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// Save serializes events and overwrites the slot.
// It reports whether the write succeeded; on failure the error is logged.
func (s *EventStore) Save(ctx context.Context, events []domain.Event) bool {
	if events == nil {
		events = []domain.Event{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		s.log.ErrorContext(ctx, "could not encode events", "slot", s.key, "error", err)
		return false
	}
	if err := s.slot.Put(ctx, s.key, raw); err != nil {
		s.log.ErrorContext(ctx, "could not save events", "slot", s.key, "error", err)
		return false
	}
	s.log.DebugContext(ctx, "events saved", "slot", s.key, "count", len(events))
	return true
}
