package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/oapi-codegen/runtime"

	"github.com/qalakaar/gigboard/internal/domain"
)

// icsProductID identifies this service in exported calendars.
const icsProductID = "-//qalakaar//gigboard//EN"

// icsEventLength is the assumed duration of an event; records only carry a start.
const icsEventLength = 2 * time.Hour

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"id", "date", "title", "venue", "city", "type", "all_ages", "details",
}

// GetExport handles GET /export.
// It returns every event ordered by date ascending.
// ?format=csv returns CSV, ?format=ics an iCalendar feed; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid format parameter"))
		return
	}

	events := s.events.Query(r.Context(), domain.Query{Sort: domain.SortDateAsc})

	switch {
	case format == nil || *format == "json":
		data := make([]eventResponse, len(events))
		for i, e := range events {
			data[i] = eventToResponse(e)
		}
		writeJSON(w, http.StatusOK, data)
	case *format == "csv":
		writeBody(w, "text/csv", "events.csv", buildCSV(events))
	case *format == "ics":
		writeBody(w, "text/calendar", "events.ics", []byte(buildICS(events, time.Now())))
	default:
		writeJSON(w, http.StatusBadRequest, requestBody("format must be one of json, csv, ics"))
	}
}

// writeBody sends an attachment with an explicit content length.
func writeBody(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes events as CSV with a header row.
func buildCSV(events []domain.Event) []byte {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	//nolint:errcheck // bytes.Buffer.Write never returns an error
	cw.Write(csvHeaders)
	for _, e := range events {
		//nolint:errcheck
		cw.Write(eventToCSVRecord(e))
	}
	cw.Flush()
	return buf.Bytes()
}

// eventToCSVRecord encodes an event as a flat string slice in csvHeaders order.
func eventToCSVRecord(e domain.Event) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Date.UTC().Format(time.RFC3339),
		e.Title,
		e.Venue,
		e.City,
		e.Type,
		strconv.FormatBool(e.AllAges),
		e.Details,
	}
}

// buildICS renders events as a VCALENDAR with one VEVENT per event.
// stamp is written as DTSTAMP on every VEVENT.
func buildICS(events []domain.Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range events {
		ev := cal.AddEvent(fmt.Sprintf("%d@gigboard", e.ID))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(e.Date.UTC())
		ev.SetEndAt(e.Date.UTC().Add(icsEventLength))
		ev.SetSummary(e.Title)
		ev.SetLocation(e.Venue + ", " + e.City)
		if e.Details != "" {
			ev.SetDescription(e.Details)
		}
		ev.AddProperty(ics.ComponentPropertyCategories, e.Type)
	}
	return cal.Serialize()
}
