package sse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
)

// plainWriter hides the recorder's Flush method
type plainWriter struct {
	http.ResponseWriter
}

func TestNewWriter(t *testing.T) {
	if _, err := NewWriter(plainWriter{httptest.NewRecorder()}); err != ErrStreamingUnsupported {
		t.Errorf("NewWriter(no flusher) error = %v, want ErrStreamingUnsupported", err)
	}

	rec := httptest.NewRecorder()
	if _, err := NewWriter(rec); err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if !rec.Flushed {
		t.Error("headers not flushed")
	}
}

func TestWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	sw, _ := NewWriter(rec)

	fmt.Fprint(sw, "data: x\n\n")
	if rec.Body.Len() != 0 {
		t.Fatalf("body = %q before Flush, want buffered", rec.Body.String())
	}
	if err := sw.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := rec.Body.String(); got != "data: x\n\n" {
		t.Errorf("body = %q, want %q", got, "data: x\n\n")
	}
}

func TestWriter_StreamSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	sw, _ := NewWriter(rec)

	release := make(chan struct{})
	stream := mstream.NewStream("view", func(ctx context.Context, send func(mstream.Event)) error {
		<-release
		send(mstream.NewEvent([]byte(`{"id":"a"}`)).WithType("stale"))
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- mstream.StreamSSE(context.Background(), sw, stream) }()
	for stream.ClientCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	stream.Start()
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("StreamSSE() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("StreamSSE() did not return after the stream finished")
	}

	want := "event: stale\ndata: {\"id\":\"a\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriter_KeepAliveAndCancel(t *testing.T) {
	rec := httptest.NewRecorder()
	sw, _ := NewWriter(rec)

	stream := mstream.NewStream("idle", func(ctx context.Context, send func(mstream.Event)) error {
		<-ctx.Done()
		return nil
	})
	stream.Start()
	defer stream.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	cfg := &Config{KeepAliveInterval: 5 * time.Millisecond}
	err := mstream.StreamSSE(ctx, sw, stream, mstream.WithKeepalive(cfg.KeepAliveInterval))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("StreamSSE() error = %v, want deadline exceeded", err)
	}
	if !strings.Contains(rec.Body.String(), ": keepalive\n\n") {
		t.Errorf("body = %q, want a keepalive comment", rec.Body.String())
	}
}
