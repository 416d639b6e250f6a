package armutils

import (
	"sync"
	"time"

	"go.viam.com/rdk/logging"
)

// An Event is one diagnostic notification: a short name and a payload string.
type Event struct {
	Name    string
	Payload string
	Time    time.Time
}

// EventSink receives fire-and-forget diagnostic events. Publish must not block on delivery.
type EventSink interface {
	Publish(name, payload string)
}

// LogSink logs every event and keeps the most recent ones for inspection.
type LogSink struct {
	logger logging.Logger

	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewLogSink returns a sink that logs through logger and retains up to size events.
func NewLogSink(logger logging.Logger, size int) *LogSink {
	if size <= 0 {
		size = DefaultEventHistory
	}
	return &LogSink{logger: logger, events: make([]Event, size)}
}

// Publish logs the event and records it in the history ring.
func (s *LogSink) Publish(name, payload string) {
	s.logger.Infow("event", "name", name, "data", payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = Event{Name: name, Payload: payload, Time: time.Now()}
	s.next = (s.next + 1) % len(s.events)
	if s.next == 0 {
		s.full = true
	}
}

// Recent returns the retained events, oldest first.
func (s *LogSink) Recent() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return append([]Event(nil), s.events[:s.next]...)
	}
	out := make([]Event, 0, len(s.events))
	out = append(out, s.events[s.next:]...)
	return append(out, s.events[:s.next]...)
}
