package api

import (
	"context"
	"sync"
)

// Epochs tracks the latest request per resource key. Starting a new request
// for a key cancels the previous one; a superseded request is stale and its
// response must be discarded.
type Epochs struct {
	mu      sync.Mutex
	next    uint64
	current map[string]inflight
}

type inflight struct {
	n      uint64
	cancel context.CancelFunc
}

// Ticket identifies one request generation.
type Ticket struct {
	epochs *Epochs
	key    string
	n      uint64
}

func NewEpochs() *Epochs {
	return &Epochs{current: make(map[string]inflight)}
}

// Begin starts a new generation for key and returns a context canceled when
// a newer generation begins.
func (e *Epochs) Begin(ctx context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.current[key]; ok {
		prev.cancel()
	}
	e.next++
	e.current[key] = inflight{n: e.next, cancel: cancel}
	return ctx, Ticket{epochs: e, key: key, n: e.next}
}

// Current reports whether no newer generation has begun for the ticket's key.
func (t Ticket) Current() bool {
	t.epochs.mu.Lock()
	defer t.epochs.mu.Unlock()
	cur, ok := t.epochs.current[t.key]
	return ok && cur.n == t.n
}

// Done releases the ticket. It must be called once the response is handled.
func (t Ticket) Done() {
	t.epochs.mu.Lock()
	defer t.epochs.mu.Unlock()
	if cur, ok := t.epochs.current[t.key]; ok && cur.n == t.n {
		cur.cancel()
		delete(t.epochs.current, t.key)
	}
}

// Len returns the number of keys with a request in flight.
func (e *Epochs) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.current)
}
