package tracker

import (
	"time"

	"intake-go/internal/model"
)

// EventType identifies what happened to the collection.
type EventType string

const (
	EventAdvanced EventType = "advanced" // processing -> need_approval
	EventApproved EventType = "approved"
	EventRejected EventType = "rejected"
	EventIngested EventType = "ingested"
	EventTicked   EventType = "ticked" // one per Tick, even if nothing advanced
)

// Event is delivered to subscribers after a mutation completes.
type Event struct {
	Type       EventType
	DocumentID string
	Status     model.Status
	Reason     string
	Advanced   int // number of documents advanced; EventTicked only
	At         time.Time
}

type listener struct {
	id int
	fn func(Event)
}

// maxHistory bounds the in-memory event history.
const maxHistory = 256

// Subscribe registers fn to receive every subsequent event and returns a
// function that removes it. Listeners run on the goroutine that caused the
// event, after the tracker's lock is released, so they may read from the
// tracker. They must not call Close.
func (t *Tracker) Subscribe(fn func(Event)) (unsubscribe func()) {
	t.lmu.Lock()
	defer t.lmu.Unlock()

	id := t.nextListener
	t.nextListener++
	t.listeners = append(t.listeners, listener{id: id, fn: fn})

	return func() {
		t.lmu.Lock()
		defer t.lmu.Unlock()
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// History returns up to limit recorded events, newest first.
// Tick summaries are not recorded. A non-positive limit returns everything.
func (t *Tracker) History(limit int) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := len(t.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, t.history[i])
	}
	return out
}

// record appends ev to the history. Caller holds t.mu.
func (t *Tracker) record(ev Event) {
	t.history = append(t.history, ev)
	if len(t.history) > maxHistory {
		t.history = append(t.history[:0:0], t.history[len(t.history)-maxHistory:]...)
	}
}

// publish delivers events to the current listeners. Caller must not hold t.mu.
func (t *Tracker) publish(events ...Event) {
	if len(events) == 0 {
		return
	}

	t.lmu.Lock()
	listeners := make([]func(Event), 0, len(t.listeners))
	for _, l := range t.listeners {
		listeners = append(listeners, l.fn)
	}
	t.lmu.Unlock()

	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}
