package domain

import (
	"sync"
	"time"
)

// IDGenerator hands out integer order ids derived from the wall clock in
// milliseconds. Ids are strictly increasing even when two orders land in the
// same millisecond or the clock steps back.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *IDGenerator) Next(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
