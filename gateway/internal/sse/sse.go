// Package sse implements an incremental parser for the server-sent
// events wire format used by the Latitude gateway to stream document
// runs.
package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// DefaultEventName is the event name assigned to frames that carry no
// "event" field, per the SSE specification.
const DefaultEventName = "message"

// Scanner buffer sizes. Individual lines may carry large JSON payloads.
const (
	initialBufferSize = 64 * 1024
	maxBufferSize     = 1024 * 1024
)

// Event is a single server-sent event assembled from one frame.
type Event struct {
	// Name is the event name, DefaultEventName when the frame carried
	// no "event" field.
	Name string

	// Data is the frame payload. Multiple "data" lines are joined with
	// newlines.
	Data string

	// ID is the last event ID observed on or before this frame, empty
	// if the server never sent one.
	ID string

	// Retry is the most recent reconnection delay in milliseconds,
	// zero if the server never sent one.
	Retry int
}

// Reader parses server-sent events from a byte stream. Bytes may
// arrive in arbitrarily sized chunks; frames are assembled across
// chunk boundaries. Reader is not safe for concurrent use.
type Reader struct {
	scanner *bufio.Scanner

	// Pending frame state. ID and retry persist across frames per the
	// SSE specification; name and data reset on every dispatch.
	name  string
	data  []string
	id    string
	retry int
}

// NewReader returns a Reader that parses events from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, initialBufferSize), maxBufferSize)
	return &Reader{scanner: sc}
}

// Next returns the next event in the stream. It returns io.EOF when
// the stream ends cleanly and the underlying reader's error otherwise.
// A frame left unterminated at end of stream is dispatched before
// io.EOF is reported.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()

		// A blank line terminates the frame. Frames without data
		// produce no event.
		if line == "" {
			if ev, ok := r.dispatch(); ok {
				return ev, nil
			}
			continue
		}

		r.parseLine(line)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if ev, ok := r.dispatch(); ok {
		return ev, nil
	}
	return nil, io.EOF
}

// parseLine accumulates one field line into the pending frame.
func (r *Reader) parseLine(line string) {
	// Lines starting with a colon are comments.
	if strings.HasPrefix(line, ":") {
		return
	}

	field, value, _ := strings.Cut(line, ":")
	// A single space after the colon is part of the delimiter.
	value = strings.TrimPrefix(value, " ")

	switch field {
	case "event":
		r.name = value
	case "data":
		r.data = append(r.data, value)
	case "id":
		r.id = value
	case "retry":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			r.retry = ms
		}
	}
	// Unknown fields are ignored.
}

// dispatch finalizes the pending frame. It reports false when the
// frame carried no data lines, in which case no event is produced.
func (r *Reader) dispatch() (*Event, bool) {
	if len(r.data) == 0 {
		r.name = ""
		return nil, false
	}

	ev := &Event{
		Name:  r.name,
		Data:  strings.Join(r.data, "\n"),
		ID:    r.id,
		Retry: r.retry,
	}
	if ev.Name == "" {
		ev.Name = DefaultEventName
	}

	r.name = ""
	r.data = nil
	return ev, true
}
