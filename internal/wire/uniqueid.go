package wire

import (
	"sync"
	"time"
)

// UniqueID orders overlapping waiters registered on the same reply method
// id: lower UniqueIDs are older. Grounded on the spec's "(wall-clock ms,
// sequence)" counter — monotonic only enough to break ties, not meant to
// survive a process restart.
type UniqueID struct {
	millis   int64
	sequence uint32
}

// Less reports whether id is older than other.
func (id UniqueID) Less(other UniqueID) bool {
	if id.millis != other.millis {
		return id.millis < other.millis
	}
	return id.sequence < other.sequence
}

// idGenerator is the per-connection mutable singleton the spec allows:
// "the unique-id factory is the only process-wide mutable singleton and
// may be made per-connection without affecting semantics."
type idGenerator struct {
	mu       sync.Mutex
	lastTime int64
	sequence uint32
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

func (g *idGenerator) next() UniqueID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now == g.lastTime {
		g.sequence++
	} else {
		g.lastTime = now
		g.sequence = 0
	}
	return UniqueID{millis: now, sequence: g.sequence}
}
