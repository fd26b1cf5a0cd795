package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/qalakaar/gigboard/internal/domain"
)

// eventResponse is the JSON shape of a single event.
// Display carries the UTC day/month used by the event card.
type eventResponse struct {
	ID      int64        `json:"id"`
	Date    time.Time    `json:"date"`
	Title   string       `json:"title"`
	Venue   string       `json:"venue"`
	City    string       `json:"city"`
	Type    string       `json:"type"`
	Details string       `json:"details"`
	AllAges bool         `json:"allAges"`
	Display eventDisplay `json:"display"`
}

type eventDisplay struct {
	Day   int    `json:"day"`
	Month string `json:"month"`
}

// eventRequest is the body accepted by POST /events and PUT /events/{id}.
// Date accepts a bare "2006-01-02" (midnight UTC) or a full RFC 3339 timestamp.
type eventRequest struct {
	ID      *int64  `json:"id,omitempty"`
	Date    string  `json:"date"`
	Title   string  `json:"title"`
	Venue   string  `json:"venue"`
	City    string  `json:"city"`
	Type    string  `json:"type"`
	Details *string `json:"details,omitempty"`
	AllAges bool    `json:"allAges"`
}

// listEventsParams are the query parameters of GET /events.
type listEventsParams struct {
	Search *string
	City   *string
	Type   *string
	Sort   *string
}

// ListEvents handles GET /events.
// Supports ?search=, ?city=, ?type= and ?sort= (date-asc, date-desc, title-az).
// Sort defaults to date-asc; an unrecognised value leaves storage order.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	var params listEventsParams
	query := r.URL.Query()
	for name, dest := range map[string]**string{
		"search": &params.Search,
		"city":   &params.City,
		"type":   &params.Type,
		"sort":   &params.Sort,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("invalid %s parameter", name)))
			return
		}
	}

	q := domain.Query{Sort: domain.SortDateAsc}
	if params.Search != nil {
		q.Search = *params.Search
	}
	if params.City != nil {
		q.City = *params.City
	}
	if params.Type != nil {
		q.Type = *params.Type
	}
	if params.Sort != nil {
		q.Sort = domain.SortOption(*params.Sort)
	}

	events := s.events.Query(r.Context(), q)
	data := make([]eventResponse, len(events))
	for i, e := range events {
		data[i] = eventToResponse(e)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetFacets handles GET /events/facets.
func (s *Server) GetFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.events.Facets(r.Context()))
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := s.events.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, eventToResponse(event))
}

// SubmitEvent handles POST /events, the form submission endpoint.
// A body without an id creates an event (201); a body with an id edits
// that event (200).
func (s *Server) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeDraft(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	saved, err := s.events.Submit(r.Context(), draft)
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	status := http.StatusOK
	if draft.ID == nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, eventToResponse(saved))
}

// UpdateEvent handles PUT /events/{id}. The path ID wins over any id in the body.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	draft, err := decodeDraft(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	updated, err := s.events.Update(r.Context(), draft.Event(id))
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, eventToResponse(updated))
}

// DeleteEvent handles DELETE /events/{id}.
// Always 204: deleting an unknown event is not an error.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.events.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// pathID binds the {id} URL parameter. On failure it writes a 400 and
// returns ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid event id"))
		return 0, false
	}
	return id, true
}

// errBodyTooLarge is returned by decodeDraft when the body exceeds the
// limit set by the body size middleware.
var errBodyTooLarge = errors.New("request body too large")

// writeDecodeError reports a decodeDraft failure: 413 for an oversized
// body, 422 for anything else.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge,
			errorResponse{Error: errorDetail{Code: "payload_too_large", Message: err.Error()}})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
}

// decodeDraft reads an eventRequest body and converts it to a domain.Draft.
// Only shape problems are reported here; required-field rules are the service's job.
func decodeDraft(r *http.Request) (domain.Draft, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.Draft{}, errors.New("request body is required")
	}
	var body eventRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Draft{}, errBodyTooLarge
		}
		return domain.Draft{}, errors.New("request body is not a valid event")
	}
	return requestToDraft(body)
}

// requestToDraft converts a decoded eventRequest into a domain.Draft.
func requestToDraft(body eventRequest) (domain.Draft, error) {
	d := domain.Draft{
		ID:      body.ID,
		Title:   body.Title,
		Venue:   body.Venue,
		City:    body.City,
		Type:    body.Type,
		AllAges: body.AllAges,
	}
	if body.Details != nil {
		d.Details = *body.Details
	}
	if strings.TrimSpace(body.Date) != "" {
		date, err := parseEventDate(body.Date)
		if err != nil {
			return domain.Draft{}, err
		}
		d.Date = date
	}
	return d, nil
}

// parseEventDate accepts the date input's "2006-01-02" form (midnight UTC)
// or a full RFC 3339 timestamp, and normalises to UTC.
func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}

// eventToResponse converts a domain.Event into its JSON shape.
func eventToResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:      e.ID,
		Date:    e.Date.UTC(),
		Title:   e.Title,
		Venue:   e.Venue,
		City:    e.City,
		Type:    e.Type,
		Details: e.Details,
		AllAges: e.AllAges,
		Display: eventDisplay{Day: e.Day(), Month: e.MonthAbbrev()},
	}
}
