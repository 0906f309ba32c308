package client

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

// InputEvent is one producer command for the session worker. The set is
// closed: every variant maps to exactly one request packet.
type InputEvent interface {
	isInputEvent()
}

// OutputEvent completes an input event with the response payload.
type OutputEvent interface {
	isOutputEvent()
}

// GetRelations asks for every relation row owned by the session user.
type GetRelations struct{}

// GetMessages asks for the conversation with Sender. After is a look-back
// window in seconds; 0 means the entire history.
type GetMessages struct {
	Sender string
	After  uint64
}

// AddFriend marks Username as a friend of the session user.
type AddFriend struct {
	Username string
}

// RemoveFriend clears the friendship with Username.
type RemoveFriend struct {
	Username string
}

// SendMessage delivers Content to Receiver.
type SendMessage struct {
	Receiver string
	Content  string
}

func (GetRelations) isInputEvent() {}
func (GetMessages) isInputEvent()  {}
func (AddFriend) isInputEvent()    {}
func (RemoveFriend) isInputEvent() {}
func (SendMessage) isInputEvent()  {}

// OutGetRelations answers GetRelations.
type OutGetRelations struct {
	Relations []chat.Relation
}

// OutGetMessages answers GetMessages, oldest first.
type OutGetMessages struct {
	Messages []chat.Message
}

// OutAddFriend answers AddFriend. Success is false when the peer does not
// exist or is the session user.
type OutAddFriend struct {
	Success bool
}

// OutRemoveFriend acknowledges RemoveFriend.
type OutRemoveFriend struct{}

// OutSendMessage acknowledges SendMessage.
type OutSendMessage struct{}

func (OutGetRelations) isOutputEvent() {}
func (OutGetMessages) isOutputEvent()  {}
func (OutAddFriend) isOutputEvent()    {}
func (OutRemoveFriend) isOutputEvent() {}
func (OutSendMessage) isOutputEvent()  {}

// eventName names an event for log fields.
func eventName(ev any) string {
	switch ev.(type) {
	case GetRelations:
		return "GetRelations"
	case GetMessages:
		return "GetMessages"
	case AddFriend:
		return "AddFriend"
	case RemoveFriend:
		return "RemoveFriend"
	case SendMessage:
		return "SendMessage"
	default:
		return fmt.Sprintf("%T", ev)
	}
}

// newEventID draws a uniformly random id of the configured byte width.
// Event ids identify events in logs; they are independent of frame ids.
func newEventID(width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("event id width %d bytes out of range", width)
	}
	var b [8]byte
	if _, err := rand.Read(b[8-width:]); err != nil {
		return 0, fmt.Errorf("generate event id: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// eventResult is the completion of one input event.
type eventResult struct {
	output OutputEvent
	err    error
}

// pendingEvent pairs a queued input event with its completion promise.
// The reply channel has capacity 1 so the worker never blocks on a
// producer that gave up.
type pendingEvent struct {
	ctx   context.Context
	id    uint64
	event InputEvent
	reply chan eventResult
}

// eventQueue is the session's input queue: many producers, one consumer.
// Closing stops intake but keeps the backlog poppable, so a queued event
// is always answered exactly once.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*pendingEvent
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends one event in arrival order. Returns false once the queue is
// closed.
func (q *eventQueue) push(pe *pendingEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, pe)
	q.cond.Signal()
	return true
}

// pop blocks until an event is available or the queue closes with an empty
// backlog.
func (q *eventQueue) pop() (*pendingEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	pe := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return pe, true
}

// close stops intake and wakes the consumer.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// isClosed reports whether close has been called; the consumer uses it to
// fail the backlog instead of sending requests on a stopping session.
func (q *eventQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
