package services

import (
	"sort"
	"sync"

	"github.com/devilmonastery/blackhole/internal/pkg/metrics"
)

// PresenceEvent describes a join or leave in a room.
type PresenceEvent struct {
	Room   string
	Key    string
	Joined bool
}

// PresenceService tracks the set of connected session keys per room and
// pushes join/leave events to watchers. It is the in-process realization
// of the presence collaborator; all state is local and lost on restart,
// which is fine for ephemeral rooms.
type PresenceService struct {
	mu       sync.Mutex
	rooms    map[string]map[string]map[string]string // room -> key -> metadata
	watchers map[string][]chan PresenceEvent
}

// NewPresenceService creates an empty presence tracker.
func NewPresenceService() *PresenceService {
	return &PresenceService{
		rooms:    make(map[string]map[string]map[string]string),
		watchers: make(map[string][]chan PresenceEvent),
	}
}

// Track registers a session key in a room. Re-tracking an existing key
// only refreshes its metadata.
func (s *PresenceService) Track(room, key string, metadata map[string]string) {
	s.mu.Lock()
	keys, ok := s.rooms[room]
	if !ok {
		keys = make(map[string]map[string]string)
		s.rooms[room] = keys
	}
	_, existed := keys[key]
	keys[key] = metadata
	count := len(keys)
	watchers := append([]chan PresenceEvent(nil), s.watchers[room]...)
	s.mu.Unlock()

	metrics.OnlineSessions.WithLabelValues(room).Set(float64(count))
	if !existed {
		notify(watchers, PresenceEvent{Room: room, Key: key, Joined: true})
	}
}

// Untrack removes a session key from a room. Unknown keys are a no-op.
func (s *PresenceService) Untrack(room, key string) {
	s.mu.Lock()
	keys := s.rooms[room]
	_, existed := keys[key]
	delete(keys, key)
	if len(keys) == 0 {
		delete(s.rooms, room)
	}
	count := len(keys)
	watchers := append([]chan PresenceEvent(nil), s.watchers[room]...)
	s.mu.Unlock()

	metrics.OnlineSessions.WithLabelValues(room).Set(float64(count))
	if existed {
		notify(watchers, PresenceEvent{Room: room, Key: key, Joined: false})
	}
}

// Observe returns the current session keys in a room, sorted.
func (s *PresenceService) Observe(room string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.rooms[room]))
	for key := range s.rooms[room] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns how many sessions a room currently has.
func (s *PresenceService) Count(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms[room])
}

// Watch subscribes to join/leave events for a room. The returned cancel
// function detaches the watcher and closes its channel.
func (s *PresenceService) Watch(room string) (<-chan PresenceEvent, func()) {
	ch := make(chan PresenceEvent, 16)

	s.mu.Lock()
	s.watchers[room] = append(s.watchers[room], ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		watchers := s.watchers[room]
		for i, w := range watchers {
			if w == ch {
				s.watchers[room] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
		if len(s.watchers[room]) == 0 {
			delete(s.watchers, room)
		}
		s.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// notify pushes an event without blocking; a watcher that has fallen
// behind misses it.
func notify(watchers []chan PresenceEvent, ev PresenceEvent) {
	for _, ch := range watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}
