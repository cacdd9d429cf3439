package gateway

import (
	"encoding/json"

	"github.com/petal-labs/latitude-go/core"
)

// SSE event names used by the Latitude API. The JSON payload carries a
// "type" field that selects the concrete event within each family.
const (
	eventNameLatitude = "latitude-event"
	eventNameProvider = "provider-event"
)

// decodeEvent decodes one SSE frame into a typed event. Frames that
// cannot be decoded are returned as core.UnknownEvent so a stream
// never fails on a payload this client does not recognize.
func decodeEvent(name string, data []byte) core.Event {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return core.UnknownEvent{Event: name, Data: data}
	}

	switch name {
	case eventNameLatitude:
		return decodeLatitudeEvent(name, head.Type, data)
	case eventNameProvider:
		return decodeProviderEvent(name, head.Type, data)
	default:
		return core.UnknownEvent{Event: name, Data: data}
	}
}

// decodeLatitudeEvent decodes chain orchestration events.
func decodeLatitudeEvent(name, typ string, data []byte) core.Event {
	switch typ {
	case core.EventTypeChainStep:
		var ev core.ChainStepEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeChainStepComplete:
		var ev core.ChainStepCompleteEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeChainComplete:
		var ev core.ChainCompleteEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	}
	return core.UnknownEvent{Event: name, Data: data}
}

// decodeProviderEvent decodes model output events.
func decodeProviderEvent(name, typ string, data []byte) core.Event {
	switch typ {
	case core.EventTypeTextDelta:
		var ev core.TextDeltaEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeToolCall:
		var ev core.ToolCallEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeToolResult:
		var ev core.ToolResultEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeStepFinish:
		var ev core.StepFinishEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeFinish:
		var ev core.FinishEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	case core.EventTypeError:
		var ev core.ErrorEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			return ev
		}
	}
	return core.UnknownEvent{Event: name, Data: data}
}
