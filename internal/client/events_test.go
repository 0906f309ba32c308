package client

import (
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := newEventQueue()
	events := []*pendingEvent{{id: 1}, {id: 2}, {id: 3}}
	for _, pe := range events {
		if !q.push(pe) {
			t.Fatalf("push(%d) = false, want true", pe.id)
		}
	}
	for _, want := range events {
		got, ok := q.pop()
		if !ok {
			t.Fatalf("pop() = false, want event %d", want.id)
		}
		if got.id != want.id {
			t.Fatalf("pop() id = %d, want %d", got.id, want.id)
		}
	}
}

func TestQueueCloseStopsIntake(t *testing.T) {
	q := newEventQueue()
	q.close()
	if q.push(&pendingEvent{id: 1}) {
		t.Fatal("push after close = true, want false")
	}
	if !q.isClosed() {
		t.Fatal("isClosed() = false after close")
	}
}

func TestQueueCloseKeepsBacklog(t *testing.T) {
	q := newEventQueue()
	q.push(&pendingEvent{id: 1})
	q.push(&pendingEvent{id: 2})
	q.close()

	for _, want := range []uint64{1, 2} {
		got, ok := q.pop()
		if !ok || got.id != want {
			t.Fatalf("pop() = (%v, %t), want id %d", got, ok, want)
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatal("pop() on drained closed queue = true, want false")
	}
}

func TestQueuePopUnblocksOnClose(t *testing.T) {
	q := newEventQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("pop() on empty closed queue = true, want false")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pop() still blocked after close")
	}
}

func TestNewEventIDWidth(t *testing.T) {
	for range 64 {
		id, err := newEventID(4)
		if err != nil {
			t.Fatalf("newEventID(4) failed: %v", err)
		}
		if id > 0xFFFFFFFF {
			t.Fatalf("newEventID(4) = %d, wider than 4 bytes", id)
		}
	}

	for _, width := range []int{0, -1, 9} {
		if _, err := newEventID(width); err == nil {
			t.Errorf("newEventID(%d) should fail", width)
		}
	}
}

func TestEventNames(t *testing.T) {
	cases := map[string]InputEvent{
		"GetRelations": GetRelations{},
		"GetMessages":  GetMessages{Sender: "alice"},
		"AddFriend":    AddFriend{Username: "bob"},
		"RemoveFriend": RemoveFriend{Username: "bob"},
		"SendMessage":  SendMessage{Receiver: "bob", Content: "hi"},
	}
	for want, ev := range cases {
		if got := eventName(ev); got != want {
			t.Errorf("eventName(%T) = %q, want %q", ev, got, want)
		}
	}
}
