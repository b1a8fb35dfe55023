// Package ids hands out record and session identifiers.
//
// Record ids keep the "milliseconds since epoch" shape existing data uses,
// but never repeat: a request landing in the same millisecond as the previous
// one (or behind a clock step back) gets last+1 instead.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces strictly increasing int64 ids.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewGenerator returns a Generator reading the wall clock through now. A nil
// now uses time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns an id greater than every id it returned before and greater
// than floor. Callers pass the largest id already stored in the collection so
// ids stay unique across restarts and processes sharing the data.
func (g *Generator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	g.last = id
	return id
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewSessionID returns a time-ordered, collision resistant session id.
func NewSessionID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
