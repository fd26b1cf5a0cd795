// Package handler implements the HTTP API for the gig board service.
// All handlers are methods on Server; they are split into files by concern
// (health.go, event.go, export.go) but share the same dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/qalakaar/gigboard/internal/domain"
)

// EventServicer defines the collection operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the service or storage layers.
type EventServicer interface {
	Submit(ctx context.Context, draft domain.Draft) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (domain.Event, error)
	Query(ctx context.Context, q domain.Query) []domain.Event
	Facets(ctx context.Context) domain.Facets
}

// Server holds the dependencies shared by every handler.
type Server struct {
	events  EventServicer
	openAPI []byte
	log     *slog.Logger
}

// NewServer constructs the Server. openAPI is served verbatim at
// /openapi.yaml; a nil logger falls back to slog.Default().
func NewServer(events EventServicer, openAPI []byte, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{events: events, openAPI: openAPI, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes mounts every endpoint on a fresh chi router.
// Global middleware (request IDs, logging, CORS) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/export", s.GetExport)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.ListEvents)
		r.Post("/", s.SubmitEvent)
		r.Get("/facets", s.GetFacets)
		r.Get("/{id}", s.GetEvent)
		r.Put("/{id}", s.UpdateEvent)
		r.Delete("/{id}", s.DeleteEvent)
	})
	return r
}
