// Package sse writes server-sent events to one client. The public tracking
// page subscribes to order snapshots through it.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var ErrClosed = errors.New("sse: stream closed")

// Stream is safe for concurrent Send calls.
type Stream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
	closed  bool
	nextID  int
}

// New sets the event-stream headers. It returns nil when w cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON data payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosedLocked() {
		return ErrClosed
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Comment writes a keepalive comment line.
func (s *Stream) Comment(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosedLocked() {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	s.flusher.Flush()
}

func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosedLocked()
}

func (s *Stream) isClosedLocked() bool {
	if s.closed {
		return true
	}
	select {
	case <-s.r.Context().Done():
		s.closed = true
	default:
	}
	return s.closed
}
