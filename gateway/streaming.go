package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
	"github.com/petal-labs/latitude-go/gateway/internal/sse"
)

// startStream executes a streaming POST request and returns the
// response with its body positioned at the start of the SSE stream.
// The status is checked before the stream is handed to the caller.
func (c *Client) startStream(ctx context.Context, url string, in any) (*http.Response, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, newDecodeError(err)
	}

	resp, err := c.do(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody)
	}

	return resp, nil
}

// openStream wires a streaming response body into a core.Stream backed
// by a bounded channel.
func (c *Client) openStream(ctx context.Context, body io.ReadCloser) *core.Stream {
	events := make(chan core.Event, c.config.StreamBufferSize)
	errs := make(chan error, 1)

	go c.processSSEStream(ctx, body, events, errs)

	return &core.Stream{
		Events: events,
		Err:    errs,
	}
}

// processSSEStream reads server-sent events from body and forwards
// decoded events in arrival order until the stream ends or ctx is
// canceled. Any error is buffered on errs before the channels close.
func (c *Client) processSSEStream(
	ctx context.Context,
	body io.ReadCloser,
	events chan<- core.Event,
	errs chan<- error,
) {
	defer body.Close()
	defer close(events)
	defer close(errs)

	reader := sse.NewReader(body)

	for {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		default:
		}

		frame, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return
			}
			// A canceled context aborts the body read; report the
			// context error rather than the wrapped read failure.
			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
			errs <- newNetworkError(err)
			return
		}

		event := decodeEvent(frame.Name, []byte(frame.Data))
		if unknown, ok := event.(core.UnknownEvent); ok {
			c.config.Logger.Debug().
				Str("event", unknown.Event).
				Int("data_bytes", len(unknown.Data)).
				Msg("unrecognized stream event")
		}

		select {
		case events <- event:
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		}
	}
}
