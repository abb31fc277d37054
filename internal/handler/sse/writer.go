package sse

import (
	"bufio"
	"errors"
	"net/http"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Writer buffers one SSE response and pushes it to the client on Flush.
// It satisfies mstream.SSEWriter.
type Writer struct {
	*bufio.Writer
	flusher http.Flusher
}

// NewWriter sets the event-stream headers and sends them. It fails when w
// does not support flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Writer{Writer: bufio.NewWriter(w), flusher: flusher}, nil
}

// Flush writes buffered output and flushes the response
func (s *Writer) Flush() error {
	if err := s.Writer.Flush(); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
