package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/qalakaar/gigboard/internal/handler"
	"github.com/qalakaar/gigboard/internal/query"
	"github.com/qalakaar/gigboard/internal/repo"
	"github.com/qalakaar/gigboard/internal/service"
)

// newWiredHandler builds the full stack over an in-memory slot, the same
// way main does for the memory backend.
func newWiredHandler(t *testing.T, slot repo.Slot) http.Handler {
	t.Helper()
	store := repo.NewEventStore(slot, "", nil)
	svc := service.NewEventService(context.Background(), store, nil, query.New(language.English))
	return handler.NewServer(svc, nil, nil).Routes()
}

func listTitles(t *testing.T, h http.Handler, target string) []string {
	t.Helper()
	rec := do(h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []eventJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	out := make([]string, len(resp))
	for i, e := range resp {
		out[i] = e.Title
	}
	return out
}

func TestWired_SeedThenCreateEditDelete(t *testing.T) {
	slot := repo.NewMemorySlot()
	h := newWiredHandler(t, slot)

	// Fresh slot is seeded.
	assert.Equal(t, []string{"Acoustic Night", "Rock Fest 2025"}, listTitles(t, h, "/events"))

	// Create.
	body := validRequest()
	body["title"] = "Jazz Night"
	body["city"] = "NY"
	body["type"] = "Jazz"
	body["date"] = "2025-01-01"
	rec := do(h, http.MethodPost, "/events", jsonBody(t, body))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created eventJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotZero(t, created.ID)

	assert.Equal(t, []string{"Jazz Night"}, listTitles(t, h, "/events?search=JAZZ"))
	assert.Equal(t,
		[]string{"Rock Fest 2025", "Acoustic Night", "Jazz Night"},
		listTitles(t, h, "/events?sort=date-desc"))

	// Edit through the form endpoint.
	body["id"] = created.ID
	body["title"] = "Jazz Night Encore"
	rec = do(h, http.MethodPost, "/events", jsonBody(t, body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, listTitles(t, h, "/events"), 3)

	// Delete twice: both succeed, one record goes.
	target := fmt.Sprintf("/events/%d", created.ID)
	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, target, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, target, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, target, nil).Code)

	// A restart over the same slot sees the persisted state.
	restarted := newWiredHandler(t, slot)
	assert.Equal(t, []string{"Acoustic Night", "Rock Fest 2025"}, listTitles(t, restarted, "/events"))
}

func TestWired_CorruptSlotStartsEmpty(t *testing.T) {
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), repo.DefaultSlotKey, []byte("<<garbage>>")))
	h := newWiredHandler(t, slot)

	assert.Empty(t, listTitles(t, h, "/events"))

	rec := do(h, http.MethodGet, "/events/facets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cities":[],"types":[]}`, rec.Body.String())
}

func TestWired_FacetsFromFullCollection(t *testing.T) {
	h := newWiredHandler(t, repo.NewMemorySlot())

	rec := do(h, http.MethodGet, "/events/facets", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cities":["Los Angeles","New York"],"types":["Acoustic","Rock"]}`, rec.Body.String())
}
