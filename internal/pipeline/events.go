package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType labels a batch progress event.
type EventType string

const (
	EventBatchStarted   EventType = "batch_started"
	EventDocumentDone   EventType = "document_done"
	EventDocumentFailed EventType = "document_failed"
	EventBatchCompleted EventType = "batch_completed"
)

// Event is one entry in a batch's append-only progress stream.
type Event struct {
	Seq        int       `json:"seq"`
	Type       EventType `json:"type"`
	SourceName string    `json:"source_name,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Stream is the append-only event log of one batch. Subscribers poll with an
// offset and receive everything published since, so attaching late or
// re-attaching after a disconnect never loses events while the stream lives.
type Stream struct {
	mu     sync.RWMutex
	events []Event
	done   bool
}

func (s *Stream) publish(t EventType, source, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		Seq:        len(s.events),
		Type:       t,
		SourceName: source,
		Error:      errMsg,
		Timestamp:  time.Now().UTC(),
	})
	if t == EventBatchCompleted {
		s.done = true
	}
}

// Events returns everything published at or after offset. Out-of-range
// offsets yield an empty slice.
func (s *Stream) Events(offset int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.events) {
		return nil
	}
	out := make([]Event, len(s.events)-offset)
	copy(out, s.events[offset:])
	return out
}

// Done reports whether the batch behind this stream has completed.
func (s *Stream) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Streams tracks the live progress streams by batch id. A stream is torn
// down a fixed idle period after its batch completes, bounding memory for
// long-running services.
type Streams struct {
	mu      sync.Mutex
	streams map[uuid.UUID]*Stream
	ttl     time.Duration
}

func NewStreams(ttl time.Duration) *Streams {
	return &Streams{streams: map[uuid.UUID]*Stream{}, ttl: ttl}
}

// Get returns the stream for a batch, if it still exists.
func (s *Streams) Get(id uuid.UUID) (*Stream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[id]
	return st, ok
}

func (s *Streams) open(id uuid.UUID) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &Stream{}
	s.streams[id] = st
	return st
}

func (s *Streams) scheduleTeardown(id uuid.UUID) {
	if s.ttl <= 0 {
		s.remove(id)
		return
	}
	time.AfterFunc(s.ttl, func() { s.remove(id) })
}

func (s *Streams) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streams, id)
}
