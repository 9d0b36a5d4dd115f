// Package fence discards results of superseded queries.
//
// Each call to Begin cancels the query started before it and hands out a
// ticket with a higher generation. Results are delivered only while their
// ticket is still the latest, so a slow response can never overwrite the
// answer to a newer query.
package fence

import (
	"context"
	"sync"
)

// Fence orders overlapping queries. The zero value is ready to use.
type Fence struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// Ticket identifies one query started through a Fence.
type Ticket struct {
	fence      *Fence
	generation uint64
}

// Begin cancels the previous query and starts a new one derived from ctx.
func (f *Fence) Begin(ctx context.Context) (Ticket, context.Context) {
	queryCtx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	previous := f.cancel
	f.generation++
	ticket := Ticket{fence: f, generation: f.generation}
	f.cancel = cancel
	f.mu.Unlock()

	if previous != nil {
		previous()
	}
	return ticket, queryCtx
}

// Generation returns the ticket's sequence number.
func (t Ticket) Generation() uint64 {
	return t.generation
}

// Current reports whether no newer query has begun.
func (t Ticket) Current() bool {
	if t.fence == nil {
		return false
	}
	t.fence.mu.Lock()
	defer t.fence.mu.Unlock()
	return t.generation == t.fence.generation
}

// Deliver runs fn if t is still the latest ticket and reports whether it ran.
// fn runs under the fence lock, so Begin waits for it to return.
func (f *Fence) Deliver(t Ticket, fn func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.fence != f || t.generation != f.generation {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// Stop cancels the in-flight query, if any, and invalidates every ticket.
func (f *Fence) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.generation++
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
