package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Stream represents a streaming prompt execution.
//
// Channel Rules:
//   - The gateway MUST close Events and Err when the stream ends
//   - On context cancellation, the gateway MUST terminate promptly and close channels
//   - Err emits at most one error
//   - Events preserves server order; nothing is reordered or dropped
//   - A transport failure ends Events early and surfaces on Err
type Stream struct {
	// Events emits run events in arrival order. Closed when the stream ends.
	Events <-chan Event

	// Err emits at most one error. MUST be closed when the stream ends.
	Err <-chan error
}

// StreamResult is the outcome of a fully drained stream.
type StreamResult struct {
	// UUID identifies the conversation, parsed from the final response
	// when present.
	UUID uuid.UUID

	// Text is the final response text. Falls back to the concatenated
	// text deltas when the stream ended without a chain-complete event.
	Text string

	// Usage aggregates token counts reported by the final response.
	Usage Usage

	// Messages is the full conversation after the run, when reported.
	Messages []Message

	// FinishReason is the last finish reason observed, if any.
	FinishReason string
}

// DrainStream consumes a Stream to completion and returns the assembled
// result. Blocks until the stream ends or ctx cancels.
//
// Behavior:
//  1. Read all events, accumulating text deltas in order
//  2. Capture the final text, usage, and messages from chain-complete
//  3. Track the finish reason from step-finish and finish events
//  4. Convert an error event into an *APIError wrapping ErrServer
//  5. Return any transport error surfaced on Err
func DrainStream(ctx context.Context, s *Stream) (*StreamResult, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var deltas strings.Builder
	var result StreamResult
	var streamErr error

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ev, ok := <-s.Events:
			if !ok {
				goto drained
			}
			switch e := ev.(type) {
			case TextDeltaEvent:
				deltas.WriteString(e.TextDelta)
			case StepFinishEvent:
				result.FinishReason = string(e.FinishReason)
			case FinishEvent:
				result.FinishReason = e.FinishReason
			case ErrorEvent:
				streamErr = &APIError{Code: e.Code, Message: e.Message, Err: ErrServer}
			case ChainCompleteEvent:
				result.Text = e.Response.Text
				result.Usage = e.Response.Usage
				result.Messages = e.Messages
				if id, err := uuid.Parse(e.Response.DocumentLogUUID); err == nil {
					result.UUID = id
				}
			}

		case err, ok := <-s.Err:
			if ok && err != nil {
				streamErr = err
			}
			// Keep draining Events even after an error
		}
	}

drained:
	// Pick up an error that raced with the channel close
	select {
	case err, ok := <-s.Err:
		if ok && err != nil {
			streamErr = err
		}
	default:
	}

	if streamErr != nil {
		return nil, streamErr
	}

	if result.Text == "" {
		result.Text = deltas.String()
	}
	return &result, nil
}
