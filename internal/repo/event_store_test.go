package repo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalakaar/gigboard/internal/domain"
	"github.com/qalakaar/gigboard/internal/repo"
)

// mockSlot is a hand-written test double for repo.Slot.
// Set only the function fields your test needs.
type mockSlot struct {
	get func(ctx context.Context, key string) ([]byte, error)
	put func(ctx context.Context, key string, value []byte) error
}

func (m *mockSlot) Get(ctx context.Context, key string) ([]byte, error) {
	return m.get(ctx, key)
}
func (m *mockSlot) Put(ctx context.Context, key string, value []byte) error {
	return m.put(ctx, key, value)
}

// compile-time check: mockSlot must satisfy repo.Slot.
var _ repo.Slot = (*mockSlot)(nil)

// ---- helpers ---------------------------------------------------------------

// bufLogger returns a JSON logger writing into a buffer the test can inspect.
func bufLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func sampleEvents() []domain.Event {
	return []domain.Event{
		{
			ID:      1735689600000,
			Date:    time.Date(2025, 1, 1, 20, 30, 0, 0, time.UTC),
			Title:   "Jazz Night",
			Venue:   "Blue Note",
			City:    "NY",
			Type:    "Jazz",
			Details: "Late set",
			AllAges: false,
		},
		{
			ID:      1738368000000,
			Date:    time.Date(2025, 2, 1, 19, 0, 0, 0, time.UTC),
			Title:   "Rock Show",
			Venue:   "The Forum",
			City:    "LA",
			Type:    "Rock",
			AllAges: true,
		},
	}
}

// ---- Load ------------------------------------------------------------------

func TestEventStore_Load_EmptySlotSeeds(t *testing.T) {
	slot := repo.NewMemorySlot()
	store := repo.NewEventStore(slot, "", nil)
	ctx := context.Background()

	got := store.Load(ctx)

	assert.Equal(t, repo.SeedEvents(), got)

	// The seed must also have been written so the next load reads it back.
	raw, err := slot.Get(ctx, repo.DefaultSlotKey)
	require.NoError(t, err)
	var stored []domain.Event
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, repo.SeedEvents(), stored)
}

func TestEventStore_Load_CorruptDataReturnsEmpty(t *testing.T) {
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(`{not json`)))
	log, buf := bufLogger()
	store := repo.NewEventStore(slot, "k", log)

	got := store.Load(context.Background())

	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "could not decode events")
}

func TestEventStore_Load_WrongShapeReturnsEmpty(t *testing.T) {
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(`{"id":1}`)))
	store := repo.NewEventStore(slot, "k", nil)

	got := store.Load(context.Background())

	assert.Empty(t, got)
}

func TestEventStore_Load_NullReturnsEmpty(t *testing.T) {
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(`null`)))
	store := repo.NewEventStore(slot, "k", nil)

	got := store.Load(context.Background())

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEventStore_Load_ReadErrorReturnsEmpty(t *testing.T) {
	log, buf := bufLogger()
	slot := &mockSlot{
		get: func(_ context.Context, _ string) ([]byte, error) {
			return nil, errors.New("disk on fire")
		},
	}
	store := repo.NewEventStore(slot, "k", log)

	got := store.Load(context.Background())

	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "disk on fire")
}

func TestEventStore_Load_AcceptsBrowserTimestamps(t *testing.T) {
	// Collections written by the browser app carry millisecond fractions.
	raw := `[{"id":1,"date":"2025-10-15T19:00:00.000Z","title":"Acoustic Night","venue":"The Melody Makers",` +
		`"city":"New York","type":"Acoustic","allAges":true,"details":""}]`
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(raw)))
	store := repo.NewEventStore(slot, "k", nil)

	got := store.Load(context.Background())

	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(time.Date(2025, 10, 15, 19, 0, 0, 0, time.UTC)))
	assert.True(t, got[0].AllAges)
}

func TestEventStore_Load_DuplicateIDsAreReassigned(t *testing.T) {
	raw := `[{"id":5,"date":"2025-01-01T00:00:00Z","title":"A","venue":"v","city":"c","type":"t","details":"","allAges":false},` +
		`{"id":9,"date":"2025-01-02T00:00:00Z","title":"B","venue":"v","city":"c","type":"t","details":"","allAges":false},` +
		`{"id":5,"date":"2025-01-03T00:00:00Z","title":"C","venue":"v","city":"c","type":"t","details":"","allAges":false}]`
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(raw)))
	log, buf := bufLogger()
	store := repo.NewEventStore(slot, "k", log)

	got := store.Load(context.Background())

	require.Len(t, got, 3)
	assert.Equal(t, []int64{5, 9, 10}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "C", got[2].Title)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"slot":"k"`)
	assert.Contains(t, buf.String(), `"id":5`)
}

func TestEventStore_Load_DuplicateOfMaxIDIsDropped(t *testing.T) {
	raw := `[{"id":9223372036854775807,"date":"2025-01-01T00:00:00Z","title":"A","venue":"v","city":"c","type":"t"},` +
		`{"id":9223372036854775807,"date":"2025-01-02T00:00:00Z","title":"B","venue":"v","city":"c","type":"t"}]`
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(raw)))
	log, buf := bufLogger()

	got := repo.NewEventStore(slot, "k", log).Load(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
	assert.Contains(t, buf.String(), "dropping event with duplicate id")
}

func TestEventStore_Load_DatesAreUTC(t *testing.T) {
	raw := `[{"id":1,"date":"2025-01-01T23:30:00-05:00","title":"A","venue":"v","city":"c","type":"t"}]`
	slot := repo.NewMemorySlot()
	require.NoError(t, slot.Put(context.Background(), "k", []byte(raw)))

	got := repo.NewEventStore(slot, "k", nil).Load(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2025, 1, 2, 4, 30, 0, 0, time.UTC), got[0].Date)
}

// ---- Save ------------------------------------------------------------------

func TestEventStore_SaveThenLoad_RoundTrip(t *testing.T) {
	store := repo.NewEventStore(repo.NewMemorySlot(), "k", nil)
	ctx := context.Background()
	want := sampleEvents()

	require.True(t, store.Save(ctx, want))

	assert.Equal(t, want, store.Load(ctx))
}

func TestEventStore_Save_EmptyCollectionIsNotReseeded(t *testing.T) {
	store := repo.NewEventStore(repo.NewMemorySlot(), "k", nil)
	ctx := context.Background()

	require.True(t, store.Save(ctx, nil))

	got := store.Load(ctx)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEventStore_Save_PersistedLayout(t *testing.T) {
	slot := repo.NewMemorySlot()
	store := repo.NewEventStore(slot, "k", nil)
	ctx := context.Background()

	require.True(t, store.Save(ctx, sampleEvents()[:1]))

	raw, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": 1735689600000,
		"date": "2025-01-01T20:30:00Z",
		"title": "Jazz Night",
		"venue": "Blue Note",
		"city": "NY",
		"type": "Jazz",
		"details": "Late set",
		"allAges": false
	}]`, string(raw))
}

func TestEventStore_Save_WriteFailureIsLogged(t *testing.T) {
	log, buf := bufLogger()
	slot := &mockSlot{
		put: func(_ context.Context, _ string, _ []byte) error {
			return errors.New("quota exceeded")
		},
	}
	store := repo.NewEventStore(slot, "k", log)

	ok := store.Save(context.Background(), sampleEvents())

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "quota exceeded")
}

func TestEventStore_Save_UsesConfiguredKey(t *testing.T) {
	var gotKey string
	slot := &mockSlot{
		put: func(_ context.Context, key string, _ []byte) error {
			gotKey = key
			return nil
		},
	}
	store := repo.NewEventStore(slot, "custom_slot", nil)

	store.Save(context.Background(), sampleEvents())

	assert.Equal(t, "custom_slot", gotKey)
}
