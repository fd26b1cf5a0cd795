package service

import (
	"errors"
	"math"
	"sync"
	"time"
)

// ErrIDsExhausted is returned by IDGenerator.Next once the largest
// representable ID has been handed out or observed.
var ErrIDsExhausted = errors.New("event ids exhausted")

// IDGenerator hands out millisecond-timestamp IDs that strictly increase,
// even when several are requested within the same millisecond or the clock
// steps backwards.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator returns a generator driven by now. A nil now uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Observe raises the floor so future IDs are greater than id.
// Called with every ID already present in a loaded collection.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}

// Next returns a new ID.
// Returns ErrIDsExhausted when the floor is already math.MaxInt64.
func (g *IDGenerator) Next() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		if g.last == math.MaxInt64 {
			return 0, ErrIDsExhausted
		}
		id = g.last + 1
	}
	g.last = id
	return id, nil
}
