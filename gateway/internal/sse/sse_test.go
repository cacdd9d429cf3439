package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// collectEvents reads events until io.EOF and fails the test on any
// other error.
func collectEvents(t *testing.T, r *Reader) []Event {
	t.Helper()

	var events []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, *ev)
	}
}

func TestReaderSingleEvent(t *testing.T) {
	input := "event: latitude-event\ndata: {\"type\":\"chain-complete\"}\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Name != "latitude-event" {
		t.Errorf("Name = %q, want %q", events[0].Name, "latitude-event")
	}
	if events[0].Data != `{"type":"chain-complete"}` {
		t.Errorf("Data = %q, want %q", events[0].Data, `{"type":"chain-complete"}`)
	}
}

func TestReaderMultipleEvents(t *testing.T) {
	input := "event: a\ndata: one\n\nevent: b\ndata: two\n\ndata: three\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	want := []Event{
		{Name: "a", Data: "one"},
		{Name: "b", Data: "two"},
		{Name: "message", Data: "three"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i].Name != want[i].Name || events[i].Data != want[i].Data {
			t.Errorf("events[%d] = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestReaderMultiLineData(t *testing.T) {
	input := "data: first\ndata: second\ndata: third\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Data != "first\nsecond\nthird" {
		t.Errorf("Data = %q, want %q", events[0].Data, "first\nsecond\nthird")
	}
}

func TestReaderDefaultEventName(t *testing.T) {
	input := "data: hello\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Name != DefaultEventName {
		t.Errorf("Name = %q, want %q", events[0].Name, DefaultEventName)
	}
}

func TestReaderSkipsComments(t *testing.T) {
	input := ": keep-alive\ndata: real\n: another comment\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Data != "real" {
		t.Errorf("Data = %q, want %q", events[0].Data, "real")
	}
}

func TestReaderNoEventWithoutData(t *testing.T) {
	// The first frame has an event name but no data, so it must not
	// produce an event. The name must not leak into the next frame.
	input := "event: ping\n\ndata: payload\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Name != "message" {
		t.Errorf("Name = %q, want %q", events[0].Name, "message")
	}
	if events[0].Data != "payload" {
		t.Errorf("Data = %q, want %q", events[0].Data, "payload")
	}
}

func TestReaderEmptyDataLine(t *testing.T) {
	// "data:" with no value still counts as a data line and produces
	// an event with empty data.
	input := "data:\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Data != "" {
		t.Errorf("Data = %q, want empty", events[0].Data)
	}
}

func TestReaderNoSpaceAfterColon(t *testing.T) {
	input := "data:compact\n\ndata:  two spaces\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Data != "compact" {
		t.Errorf("Data = %q, want %q", events[0].Data, "compact")
	}
	// Only the first space after the colon is part of the delimiter.
	if events[1].Data != " two spaces" {
		t.Errorf("Data = %q, want %q", events[1].Data, " two spaces")
	}
}

func TestReaderRetryPersists(t *testing.T) {
	// A retry-only frame produces no event but the value carries onto
	// subsequent events. Non-numeric retry values are ignored.
	input := "retry: 3000\n\ndata: a\n\nretry: soon\ndata: b\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Retry != 3000 {
		t.Errorf("events[0].Retry = %d, want 3000", events[0].Retry)
	}
	if events[1].Retry != 3000 {
		t.Errorf("events[1].Retry = %d, want 3000", events[1].Retry)
	}
}

func TestReaderIDPersists(t *testing.T) {
	input := "id: 42\ndata: a\n\ndata: b\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != "42" {
		t.Errorf("events[0].ID = %q, want %q", events[0].ID, "42")
	}
	if events[1].ID != "42" {
		t.Errorf("events[1].ID = %q, want %q", events[1].ID, "42")
	}
}

func TestReaderCRLFLineEndings(t *testing.T) {
	input := "event: latitude-event\r\ndata: payload\r\n\r\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Name != "latitude-event" {
		t.Errorf("Name = %q, want %q", events[0].Name, "latitude-event")
	}
	if events[0].Data != "payload" {
		t.Errorf("Data = %q, want %q", events[0].Data, "payload")
	}
}

func TestReaderFlushesFrameAtEOF(t *testing.T) {
	// Stream ends without a terminating blank line.
	input := "event: finish\ndata: last"
	r := NewReader(strings.NewReader(input))

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.Name != "finish" || ev.Data != "last" {
		t.Errorf("event = %+v, want name=finish data=last", ev)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
	// Further calls keep returning io.EOF.
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestReaderEmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestReaderOneBytePerRead(t *testing.T) {
	// Frames must assemble identically regardless of how the bytes are
	// chunked by the transport.
	input := "event: provider-event\ndata: {\"type\":\"text-delta\"}\n\nevent: latitude-event\ndata: {\"type\":\"chain-complete\"}\n\n"
	r := NewReader(iotest.OneByteReader(strings.NewReader(input)))
	events := collectEvents(t, r)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Name != "provider-event" {
		t.Errorf("events[0].Name = %q, want %q", events[0].Name, "provider-event")
	}
	if events[1].Name != "latitude-event" {
		t.Errorf("events[1].Name = %q, want %q", events[1].Name, "latitude-event")
	}
}

// errAfterReader yields its payload and then fails with err.
type errAfterReader struct {
	payload string
	err     error
	done    bool
}

func (r *errAfterReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.payload), nil
}

func TestReaderSurfacesTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	r := NewReader(&errAfterReader{
		payload: "event: a\ndata: one\n\n",
		err:     transportErr,
	})

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.Data != "one" {
		t.Errorf("Data = %q, want %q", ev.Data, "one")
	}

	if _, err := r.Next(); !errors.Is(err, transportErr) {
		t.Errorf("Next() error = %v, want %v", err, transportErr)
	}
}

func TestReaderLargeDataLine(t *testing.T) {
	// A single data line larger than the initial scanner buffer.
	payload := strings.Repeat("x", 200*1024)
	input := "data: " + payload + "\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(input)))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Data != payload {
		t.Errorf("Data length = %d, want %d", len(events[0].Data), len(payload))
	}
}
