package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalakaar/gigboard/internal/domain"
)

// exportServicer returns a mock whose Query echoes two events and records
// the query it was given.
func exportServicer(got *domain.Query) *mockEventServicer {
	return &mockEventServicer{
		query: func(_ context.Context, q domain.Query) []domain.Event {
			*got = q
			second := eventFixture()
			second.ID = 2
			second.Title = "Rock Fest 2025"
			second.Type = "Rock"
			second.Details = ""
			second.Date = time.Date(2025, 11, 5, 20, 0, 0, 0, time.UTC)
			return []domain.Event{eventFixture(), second}
		},
	}
}

func TestGetExport_DefaultJSON(t *testing.T) {
	var q domain.Query
	rec := do(newHTTPHandler(exportServicer(&q)), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Query{Sort: domain.SortDateAsc}, q)

	var resp []eventJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Rock Fest 2025", resp[1].Title)
}

func TestGetExport_CSV(t *testing.T) {
	var q domain.Query
	rec := do(newHTTPHandler(exportServicer(&q)), http.MethodGet, "/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "events.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "date", "title", "venue", "city", "type", "all_ages", "details"}, records[0])
	assert.Equal(t, []string{
		"1735689600000", "2025-10-15T19:00:00Z", "Acoustic Night", "The Melody Makers",
		"New York", "Acoustic", "true", "Intimate",
	}, records[1])
	assert.Equal(t, "", records[2][7])
}

func TestGetExport_ICS(t *testing.T) {
	var q domain.Query
	rec := do(newHTTPHandler(exportServicer(&q)), http.MethodGet, "/export?format=ics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar", rec.Header().Get("Content-Type"))

	cal, err := ics.ParseCalendar(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "1735689600000@gigboard", first.Id())
	assert.Equal(t, "Acoustic Night", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Acoustic", first.GetProperty(ics.ComponentPropertyCategories).Value)

	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 10, 15, 19, 0, 0, 0, time.UTC)))
	end, err := first.GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, end.Sub(start))

	// Empty details are left out rather than written as an empty property.
	assert.Nil(t, events[1].GetProperty(ics.ComponentPropertyDescription))
}

func TestGetExport_400_UnknownFormat(t *testing.T) {
	var q domain.Query
	rec := do(newHTTPHandler(exportServicer(&q)), http.MethodGet, "/export?format=xml", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
