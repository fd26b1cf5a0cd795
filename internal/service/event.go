// Package service contains the business logic for the gig board service.
// EventService owns the canonical event collection; it validates drafts,
// applies mutations in memory and then hands the whole collection to the
// persistence port. No storage details live here.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/qalakaar/gigboard/internal/domain"
	"github.com/qalakaar/gigboard/internal/query"
)

// EventPersister is the persistence port EventService depends on.
// *repo.EventStore satisfies it; tests substitute an in-memory fake.
// Implementations recover from their own failures: Load never fails and
// Save only reports whether the write went through.
type EventPersister interface {
	Load(ctx context.Context) []domain.Event
	Save(ctx context.Context, events []domain.Event) bool
}

// EventService is the event collection manager.
// All methods are safe for concurrent use; each one runs atomically with
// respect to the others.
type EventService struct {
	mu       sync.RWMutex
	events   []domain.Event
	store    EventPersister
	ids      *IDGenerator
	pipeline query.Pipeline
}

// NewEventService loads the collection once from store and returns a
// service that owns it from then on.
func NewEventService(ctx context.Context, store EventPersister, ids *IDGenerator, pipeline query.Pipeline) *EventService {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	events := store.Load(ctx)
	for _, e := range events {
		ids.Observe(e.ID)
	}
	return &EventService{
		events:   events,
		store:    store,
		ids:      ids,
		pipeline: pipeline,
	}
}

// Add validates the draft, assigns a fresh ID and appends the event.
// Any ID on the draft is ignored.
// Returns domain.ErrValidation if a required field is missing.
func (s *EventService) Add(ctx context.Context, draft domain.Draft) (domain.Event, error) {
	if err := validateDraft(draft); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Add: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.ids.Next()
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Add: %w", err)
	}
	event := draft.Event(id)
	s.events = append(s.events, event)
	s.store.Save(ctx, s.events)
	return event, nil
}

// Update replaces the event whose ID matches event.ID with event.
// An unknown ID leaves the collection and the slot untouched and returns
// domain.ErrNotFound; callers that treat it as a no-op may ignore it.
// Returns domain.ErrValidation if a required field is missing.
func (s *EventService) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := validateDraft(domain.DraftFrom(event)); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}
	event.Date = event.Date.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(event.ID)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", domain.ErrNotFound)
	}
	s.events[i] = event
	s.store.Save(ctx, s.events)
	return event, nil
}

// Delete removes the event with the given ID. Deleting an unknown ID is a
// no-op, so calling Delete twice is safe. The collection is saved either way.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.events = slices.Delete(s.events, i, i+1)
	}
	s.store.Save(ctx, s.events)
	return nil
}

// Submit routes a form submission: a draft without an ID is added, a draft
// with an ID updates the matching event.
func (s *EventService) Submit(ctx context.Context, draft domain.Draft) (domain.Event, error) {
	if draft.ID == nil {
		return s.Add(ctx, draft)
	}
	return s.Update(ctx, draft.Event(*draft.ID))
}

// GetByID returns a single event.
// Returns domain.ErrNotFound if no event has that ID.
func (s *EventService) GetByID(_ context.Context, id int64) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("service.EventService.GetByID: %w", domain.ErrNotFound)
	}
	return s.events[i], nil
}

// List returns a snapshot of the collection in storage order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *EventService) List(_ context.Context) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Query returns the filtered, sorted view of the collection for q.
func (s *EventService) Query(ctx context.Context, q domain.Query) []domain.Event {
	return s.pipeline.Apply(s.List(ctx), q)
}

// Facets returns the distinct cities and types across the whole collection.
func (s *EventService) Facets(ctx context.Context) domain.Facets {
	return query.FacetsOf(s.List(ctx))
}

// indexOf returns the position of id in s.events or -1. Caller holds s.mu.
func (s *EventService) indexOf(id int64) int {
	return slices.IndexFunc(s.events, func(e domain.Event) bool { return e.ID == id })
}

// snapshot copies s.events. Caller holds s.mu.
func (s *EventService) snapshot() []domain.Event {
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// validateDraft enforces the required-field rules shared by Add and Update.
//   - Title, Venue, City and Type must be non-empty (whitespace-only is rejected).
//   - Date must be set.
func validateDraft(d domain.Draft) error {
	for _, f := range []struct{ name, value string }{
		{"title", d.Title},
		{"venue", d.Venue},
		{"city", d.City},
		{"type", d.Type},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.name)
		}
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	return nil
}
