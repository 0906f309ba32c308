package client

import (
	"fmt"
	"sync"

	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

// pendingResponses routes response frames to the goroutines that sent the
// matching requests. A sender registers its frame id before writing; the
// receive loop delivers by id. Channels have capacity 1 so the receive
// loop never blocks on delivery, and each id has at most one waiter.
type pendingResponses struct {
	mu      sync.Mutex
	waiters map[uint64]chan chat.Frame
	failed  error
}

func newPendingResponses() *pendingResponses {
	return &pendingResponses{
		waiters: make(map[uint64]chan chat.Frame),
	}
}

// register adds a waiter for id and returns the channel its response will
// arrive on. Fails once the session is torn down, or when the id is still
// in flight.
func (p *pendingResponses) register(id uint64) (<-chan chat.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed != nil {
		return nil, p.failed
	}
	if _, exists := p.waiters[id]; exists {
		return nil, fmt.Errorf("frame id %d already in flight", id)
	}
	ch := make(chan chat.Frame, 1)
	p.waiters[id] = ch
	return ch, nil
}

// deliver hands a frame to the waiter registered for its id. Returns false
// when nobody is waiting, in which case the caller owns the frame.
func (p *pendingResponses) deliver(f chat.Frame) bool {
	p.mu.Lock()
	ch, ok := p.waiters[f.ID]
	if ok {
		delete(p.waiters, f.ID)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- f
	return true
}

// cancel removes a waiter without delivering, e.g. after a timeout. The
// response may still arrive later; the receive loop will drop it.
func (p *pendingResponses) cancel(id uint64) {
	p.mu.Lock()
	delete(p.waiters, id)
	p.mu.Unlock()
}

// failAll wakes every waiter by closing its channel and poisons the map so
// later registrations fail fast. Called by the receive loop on teardown so
// nothing blocks forever on a dead socket.
func (p *pendingResponses) failAll(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed == nil {
		p.failed = err
	}
	for id, ch := range p.waiters {
		close(ch)
		delete(p.waiters, id)
	}
}

// failure returns the teardown error once failAll has run.
func (p *pendingResponses) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}
