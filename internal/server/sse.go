package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dusk-indust/quill/internal/workflow"
)

// SSEWriter writes Server-Sent Events to an http.ResponseWriter.
// Call Init once before writing any events to set the required headers.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSEWriter wrapping the given ResponseWriter.
// The ResponseWriter must implement http.Flusher for streaming to work;
// if it does not, writes will still succeed but may be buffered.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	f, _ := w.(http.Flusher)
	return &SSEWriter{w: w, flusher: f}
}

// Init sets the SSE response headers and flushes them to the client.
func (sw *SSEWriter) Init() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	sw.w.WriteHeader(http.StatusOK)
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
}

// WriteEvent writes ev as one SSE frame named after its kind:
//
//	event: stage_started
//	data: {json}
func (sw *SSEWriter) WriteEvent(ev workflow.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("sse: marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
		return fmt.Errorf("sse: write event: %w", err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

// Frame is one decoded SSE event. Err is set when the data was not a valid
// workflow event or the stream failed mid-read.
type Frame struct {
	Event workflow.Event
	Err   error
}

// ReadEvents reads SSE frames from body and delivers them on the returned
// channel. The channel is closed when the body is exhausted, a read error
// occurs, or ctx is cancelled. A read error is delivered as a final Frame
// with Err set. The body is closed when reading finishes.
//
// Lines starting with ":" are comments, multiple data lines are joined with
// newlines, and unknown fields (including "event:") are ignored since the
// kind is part of the JSON payload.
func ReadEvents(ctx context.Context, body io.ReadCloser) <-chan Frame {
	ch := make(chan Frame)
	go func() {
		defer close(ch)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		var data strings.Builder

		flush := func() bool {
			if data.Len() == 0 {
				return true
			}
			var f Frame
			if err := json.Unmarshal([]byte(data.String()), &f.Event); err != nil {
				f.Err = fmt.Errorf("sse: unmarshal event: %w", err)
			}
			data.Reset()
			select {
			case ch <- f:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := scanner.Text()
			switch {
			case line == "":
				if !flush() {
					return
				}
			case strings.HasPrefix(line, ":"):
			case strings.HasPrefix(line, "data:"):
				payload := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(payload)
			}
		}
		if !flush() {
			return
		}
		if err := scanner.Err(); err != nil {
			select {
			case ch <- Frame{Err: fmt.Errorf("sse: read stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}
