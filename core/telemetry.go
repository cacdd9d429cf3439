package core

import "time"

// Operation identifies a gateway operation for telemetry purposes.
type Operation string

const (
	OperationRun      Operation = "run"
	OperationChat     Operation = "chat"
	OperationLog      Operation = "log"
	OperationEvaluate Operation = "evaluate"
	OperationDocument Operation = "document"
)

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// # Security Considerations
//
// Event types are designed to NEVER include sensitive data:
//   - API keys are NEVER included (stored separately as core.Secret)
//   - Prompt parameters and message content are NEVER included
//   - Response content (model outputs) is NEVER included
//   - Only operational metadata is exposed (operation, project, path, timing, token counts)
//
// This design ensures that telemetry data can be safely:
//   - Logged to disk without risk of credential exposure
//   - Sent to external monitoring systems
//   - Aggregated for analytics
//
// If extending this interface, maintain these security properties.
// Never add fields that could contain: API keys, prompt parameters,
// conversation messages, or any other potentially sensitive content.
type TelemetryHook interface {
	// OnRequestStart is called when a request to the gateway begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request to the gateway completes.
	// For streaming runs it fires after the stream ends.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
//
// This struct intentionally excludes API keys, prompt parameters, and
// message content. Only operational metadata suitable for logging is
// included.
type RequestStartEvent struct {
	Operation Operation // Gateway operation (e.g., "run", "chat")
	Project   uint64    // Project the request targets, 0 if not applicable
	Path      string    // Document path, empty if not applicable
	Start     time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
//
// The Err field carries classified error values, not raw response
// bodies, so it cannot leak request content.
type RequestEndEvent struct {
	Operation Operation // Gateway operation
	Project   uint64    // Project the request targeted, 0 if not applicable
	Path      string    // Document path, empty if not applicable
	Start     time.Time // When the request started
	End       time.Time // When the request completed
	Usage     Usage     // Token consumption, zeroed when unknown
	Err       error     // Error if request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// Use this as a default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}
