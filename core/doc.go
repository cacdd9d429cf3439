// Package core provides the latitude-go SDK client and types for running
// prompts hosted on Latitude.
//
// Latitude keeps prompt documents versioned on a gateway and executes
// them server side. The core package defines the client, the event
// model for streamed executions, and the abstractions a transport must
// implement.
//
// # Client and Gateway
//
// The primary entry point is [Client], which wraps a [Gateway] and adds
// telemetry, retry logic, and a fluent builder API:
//
//	gw := gateway.New(os.Getenv("LATITUDE_API_KEY"), gateway.WithProjectID(42))
//	client := core.NewClient(gw,
//	    core.WithTelemetry(myTelemetryHook),
//	    core.WithRetryPolicy(core.DefaultRetryPolicy()),
//	)
//
// # Running Prompts
//
// The [RunBuilder] provides a fluent API for executing a prompt
// document by path:
//
//	resp, err := client.Run("jokes/opener").
//	    Parameter("topic", "compilers").
//	    GetResponse(ctx)
//
// RunBuilder is NOT thread-safe. Each goroutine should create its own
// builder instance.
//
// # Streaming
//
// Streaming is a first-class primitive. Use [RunBuilder.Stream] to
// receive events as the gateway produces them:
//
//	stream, err := client.Run("jokes/opener").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	for ev := range stream.Events {
//	    if delta, ok := ev.(core.TextDeltaEvent); ok {
//	        fmt.Print(delta.TextDelta)
//	    }
//	}
//
// The [Stream] type provides two channels:
//   - Events: Emits events in server order
//   - Err: Emits at most one error
//
// Use [DrainStream] as a convenience to consume a stream to completion
// and assemble a [StreamResult].
//
// # Conversations
//
// A run response carries the uuid of the conversation it created. Use
// [ChatBuilder] to continue it:
//
//	followUp, err := client.Chat(resp.UUID.String()).
//	    User("Another one, please.").
//	    GetResponse(ctx)
//
// # Gateway Interface
//
// Transports implement the [Gateway] interface:
//
//	type Gateway interface {
//	    Run(ctx context.Context, req *RunRequest) (*RunResponse, error)
//	    RunStream(ctx context.Context, req *RunRequest) (*Stream, error)
//	    Chat(ctx context.Context, req *ChatRequest) (*RunResponse, error)
//	    ChatStream(ctx context.Context, req *ChatRequest) (*Stream, error)
//	}
//
// Gateways may additionally implement [LogWriter], [Evaluator], and
// [DocumentFetcher]. The corresponding builders return
// [ErrNotSupported] when the gateway does not.
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//   - [ErrUnauthorized]: Invalid or missing API key
//   - [ErrForbidden]: Key lacks access to the project
//   - [ErrRateLimited]: Gateway rate limit exceeded
//   - [ErrBadRequest]: Invalid request parameters
//   - [ErrNotFound]: Unknown project, version, or document path
//   - [ErrServer]: Gateway server error (5xx)
//   - [ErrNetwork]: Network connectivity issues
//   - [ErrDecode]: Response parsing failed
//
// Use errors.Is to check error classes, and errors.As to reach the
// [*APIError] carrying the gateway error code:
//
//	var apiErr *core.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == core.RunErrorCodeChainCompile {
//	    // The document itself failed to compile
//	}
//
// # Telemetry
//
// Implement [TelemetryHook] to observe request lifecycle:
//
//	type MyTelemetry struct{}
//
//	func (t MyTelemetry) OnRequestStart(e RequestStartEvent) {
//	    log.Printf("starting %s %s", e.Operation, e.Path)
//	}
//
//	func (t MyTelemetry) OnRequestEnd(e RequestEndEvent) {
//	    log.Printf("completed in %v, tokens: %d", e.Duration(), e.Usage.TotalTokens)
//	}
//
// # Retry Policy
//
// Configure retry behavior with [RetryPolicy]:
//
//	policy := core.NewRetryPolicy(core.RetryConfig{
//	    MaxRetries: 5,
//	    BaseDelay:  time.Second,
//	    MaxDelay:   time.Minute,
//	})
//	client := core.NewClient(gw, core.WithRetryPolicy(policy))
//
// The default policy retries transient errors (rate limits, server
// errors, network failures) with exponential backoff. Streaming calls
// are never retried.
//
// # Thread Safety
//
// [Client] is safe for concurrent use across goroutines.
// The builders are NOT thread-safe.
// [Stream] channels may be read by one goroutine at a time.
package core
