// Package realtime fans database change notifications out to in-process
// subscribers. Postgres triggers emit a NOTIFY payload on every row
// change; the Listener decodes those into Events and the Hub routes
// them to whoever asked for that table, event type, and community.
package realtime

import (
	"sync"
)

// EventType classifies a row change.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event describes one row change in one community.
type Event struct {
	Table     string    `json:"table"`
	Event     EventType `json:"event"`
	Community string    `json:"community"`
	RowID     string    `json:"row_id"`
}

// Matches reports whether the event passes a subscription filter. An
// empty filter field matches everything.
func (e Event) Matches(table string, event EventType, community string) bool {
	if table != "" && table != e.Table {
		return false
	}
	if event != "" && event != e.Event {
		return false
	}
	if community != "" && community != e.Community {
		return false
	}
	return true
}

type subscription struct {
	table     string
	event     EventType
	community string
	ch        chan Event
}

// Hub routes events to subscribers. Publish never blocks: a subscriber
// that falls behind loses events rather than stalling the feed.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[*subscription]struct{}{}}
}

// Subscribe registers interest in events matching the filter. The
// returned cancel func unregisters the subscription and closes the
// channel; it is safe to call more than once.
func (h *Hub) Subscribe(table string, event EventType, community string) (<-chan Event, func()) {
	sub := &subscription{
		table:     table,
		event:     event,
		community: community,
		ch:        make(chan Event, 64),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if !ev.Matches(sub.table, sub.event, sub.community) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
