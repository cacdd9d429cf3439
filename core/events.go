package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a single item in a prompt execution stream. Events come in
// two families: chain orchestration events emitted by the gateway
// (LatitudeEvent) and model output events relayed from the underlying
// provider (ProviderEvent). Events the SDK does not recognize surface
// as UnknownEvent rather than terminating the stream.
type Event interface {
	// EventType returns the wire discriminator for the event,
	// e.g. "text-delta" or "chain-complete".
	EventType() string
}

// LatitudeEvent marks chain orchestration events.
type LatitudeEvent interface {
	Event
	latitudeEvent()
}

// ProviderEvent marks model output events.
type ProviderEvent interface {
	Event
	providerEvent()
}

// Wire discriminators for stream events.
const (
	EventTypeChainStep         = "chain-step"
	EventTypeChainStepComplete = "chain-step-complete"
	EventTypeChainComplete     = "chain-complete"
	EventTypeTextDelta         = "text-delta"
	EventTypeToolCall          = "tool-call"
	EventTypeToolResult        = "tool-result"
	EventTypeStepFinish        = "step-finish"
	EventTypeFinish            = "finish"
	EventTypeError             = "error"
	// EventTypeUnknown is not a wire value; it is reported by
	// UnknownEvent for unrecognized or undecodable payloads.
	EventTypeUnknown = "unknown"
)

// FinishReason explains why a model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content-filter"
	FinishReasonToolCalls     FinishReason = "tool-calls"
	FinishReasonError         FinishReason = "error"
	FinishReasonOther         FinishReason = "other"
	FinishReasonUnknown       FinishReason = "unknown"
)

// ProviderResponse identifies the provider-side completion behind a
// finish event.
type ProviderResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ModelID   string    `json:"modelId"`
}

// Response is the accumulated result the gateway reports at chain step
// boundaries.
type Response struct {
	StreamType      string     `json:"streamType"`
	DocumentLogUUID string     `json:"documentLogUuid,omitempty"`
	Text            string     `json:"text"`
	ToolCalls       []ToolCall `json:"toolCalls,omitempty"`
	Usage           Usage      `json:"usage"`
}

// ChainStepEvent signals that a new step of the prompt chain is
// starting.
type ChainStepEvent struct {
	IsLastStep bool      `json:"isLastStep"`
	Config     Config    `json:"config"`
	Messages   []Message `json:"messages"`
	UUID       uuid.UUID `json:"uuid"`
}

func (ChainStepEvent) EventType() string { return EventTypeChainStep }
func (ChainStepEvent) latitudeEvent()    {}

// ChainStepCompleteEvent signals that the current chain step finished.
type ChainStepCompleteEvent struct {
	Response Response `json:"response"`
	UUID     string   `json:"uuid"`
}

func (ChainStepCompleteEvent) EventType() string { return EventTypeChainStepComplete }
func (ChainStepCompleteEvent) latitudeEvent()    {}

// ChainCompleteEvent is the terminal event of a successful run. It
// carries the final response and the full conversation so far.
type ChainCompleteEvent struct {
	Config   Config    `json:"config"`
	Response Response  `json:"response"`
	Messages []Message `json:"messages"`
}

func (ChainCompleteEvent) EventType() string { return EventTypeChainComplete }
func (ChainCompleteEvent) latitudeEvent()    {}

// TextDeltaEvent carries an incremental piece of generated text.
type TextDeltaEvent struct {
	TextDelta string `json:"textDelta"`
}

func (TextDeltaEvent) EventType() string { return EventTypeTextDelta }
func (TextDeltaEvent) providerEvent()    {}

// ToolCallEvent reports a tool invocation requested by the model.
type ToolCallEvent struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args"`
}

func (ToolCallEvent) EventType() string { return EventTypeToolCall }
func (ToolCallEvent) providerEvent()    {}

// ToolResultEvent reports the result of a tool executed server side.
type ToolResultEvent struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Result     json.RawMessage `json:"result"`
}

func (ToolResultEvent) EventType() string { return EventTypeToolResult }
func (ToolResultEvent) providerEvent()    {}

// StepFinishEvent closes one generation step within a multi-step
// completion.
type StepFinishEvent struct {
	FinishReason FinishReason     `json:"finishReason"`
	Usage        Usage            `json:"usage"`
	Response     ProviderResponse `json:"response"`
	IsContinued  bool             `json:"isContinued"`
}

func (StepFinishEvent) EventType() string { return EventTypeStepFinish }
func (StepFinishEvent) providerEvent()    {}

// FinishEvent closes the provider completion. IsContinued is nil when
// the provider did not report it.
type FinishEvent struct {
	FinishReason string           `json:"finishReason"`
	Usage        Usage            `json:"usage"`
	Response     ProviderResponse `json:"response"`
	IsContinued  *bool            `json:"isContinued,omitempty"`
}

func (FinishEvent) EventType() string { return EventTypeFinish }
func (FinishEvent) providerEvent()    {}

// ErrorEvent reports a provider-side failure mid-stream. The stream
// usually ends shortly after.
type ErrorEvent struct {
	Message string `json:"errorMessage"`
	Code    string `json:"errorCode,omitempty"`
}

func (ErrorEvent) EventType() string { return EventTypeError }
func (ErrorEvent) providerEvent()    {}

// UnknownEvent preserves a stream item the SDK could not classify or
// decode. Event is the SSE event name it arrived under and Data the
// raw payload bytes.
type UnknownEvent struct {
	Event string
	Data  json.RawMessage
}

func (UnknownEvent) EventType() string { return EventTypeUnknown }

var (
	_ LatitudeEvent = ChainStepEvent{}
	_ LatitudeEvent = ChainStepCompleteEvent{}
	_ LatitudeEvent = ChainCompleteEvent{}
	_ ProviderEvent = TextDeltaEvent{}
	_ ProviderEvent = ToolCallEvent{}
	_ ProviderEvent = ToolResultEvent{}
	_ ProviderEvent = StepFinishEvent{}
	_ ProviderEvent = FinishEvent{}
	_ ProviderEvent = ErrorEvent{}
	_ Event         = UnknownEvent{}
)
