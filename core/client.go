package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gateway is the interface that transports to the Latitude API must
// implement. Gateways SHOULD be safe for concurrent calls.
type Gateway interface {
	// Run executes a prompt document and waits for the final response.
	Run(ctx context.Context, req *RunRequest) (*RunResponse, error)

	// RunStream executes a prompt document and streams events as they
	// are produced.
	RunStream(ctx context.Context, req *RunRequest) (*Stream, error)

	// Chat appends messages to an existing conversation and waits for
	// the final response.
	Chat(ctx context.Context, req *ChatRequest) (*RunResponse, error)

	// ChatStream appends messages to an existing conversation and
	// streams events as they are produced.
	ChatStream(ctx context.Context, req *ChatRequest) (*Stream, error)
}

// LogWriter is an optional interface for gateways that can record
// externally produced completions as document logs.
type LogWriter interface {
	CreateLog(ctx context.Context, req *LogRequest) (*LogResponse, error)
}

// Evaluator is an optional interface for gateways that can trigger
// evaluations on a conversation.
type Evaluator interface {
	Evaluate(ctx context.Context, req *EvaluationRequest) (*EvaluationResponse, error)
}

// DocumentFetcher is an optional interface for gateways that can fetch
// prompt documents.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, req *DocumentRequest) (*Document, error)
}

// Client is the main entry point for running prompts through Latitude.
// Client is safe for concurrent use.
type Client struct {
	gateway   Gateway
	telemetry TelemetryHook
	retry     RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given gateway and options.
func NewClient(g Gateway, opts ...ClientOption) *Client {
	c := &Client{
		gateway:   g,
		telemetry: NoopTelemetryHook{},
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// WithRetryPolicy sets the retry policy for the client.
func WithRetryPolicy(r RetryPolicy) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.retry = r
		}
	}
}

// Gateway returns the underlying gateway.
func (c *Client) Gateway() Gateway {
	return c.gateway
}

// Run returns a RunBuilder for executing the prompt document at path.
func (c *Client) Run(path string) *RunBuilder {
	return &RunBuilder{
		client: c,
		req: RunRequest{
			Path: path,
		},
	}
}

// RunBuilder provides a fluent API for building run requests.
// RunBuilder is NOT thread-safe and should not be shared across goroutines.
type RunBuilder struct {
	client *Client
	req    RunRequest
}

// Project overrides the client default project id.
func (b *RunBuilder) Project(id uint64) *RunBuilder {
	b.req.ProjectID = id
	return b
}

// Version overrides the client default version uuid.
func (b *RunBuilder) Version(id string) *RunBuilder {
	b.req.VersionID = id
	return b
}

// Parameter sets a single template parameter.
func (b *RunBuilder) Parameter(key string, value any) *RunBuilder {
	if b.req.Parameters == nil {
		b.req.Parameters = make(map[string]any)
	}
	b.req.Parameters[key] = value
	return b
}

// Parameters replaces all template parameters.
func (b *RunBuilder) Parameters(params map[string]any) *RunBuilder {
	b.req.Parameters = params
	return b
}

// validate checks that the request is valid.
func (b *RunBuilder) validate() error {
	if b.req.Path == "" {
		return ErrPathRequired
	}
	return nil
}

// GetResponse executes the run and waits for the final response.
// It applies validation, telemetry, and retry logic.
func (b *RunBuilder) GetResponse(ctx context.Context) (*RunResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return execute(ctx, b.client, OperationRun, b.req.ProjectID, b.req.Path,
		func(ctx context.Context) (*RunResponse, error) {
			return b.client.gateway.Run(ctx, &b.req)
		})
}

// Stream executes the run and returns a streaming response.
// It applies validation and telemetry; streams are never retried.
func (b *RunBuilder) Stream(ctx context.Context) (*Stream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return executeStream(ctx, b.client, OperationRun, b.req.ProjectID, b.req.Path,
		func(ctx context.Context) (*Stream, error) {
			return b.client.gateway.RunStream(ctx, &b.req)
		})
}

// Chat returns a ChatBuilder for continuing the conversation identified
// by conversationID. The id is the uuid returned by a previous run.
func (c *Client) Chat(conversationID string) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req: ChatRequest{
			ConversationID: conversationID,
		},
	}
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s})
	return b
}

// Assistant appends an assistant message.
func (b *ChatBuilder) Assistant(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: s})
	return b
}

// Message appends a prepared message, e.g. one with structured parts.
func (b *ChatBuilder) Message(m Message) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, m)
	return b
}

// validate checks that the request is valid.
func (b *ChatBuilder) validate() error {
	if b.req.ConversationID == "" {
		return ErrConversationRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}

	// Every message needs content, either the plain string or parts
	for _, msg := range b.req.Messages {
		if msg.Content == "" && len(msg.Parts) == 0 {
			return ErrNoMessages
		}
	}

	return nil
}

// GetResponse sends the messages and waits for the final response.
// It applies validation, telemetry, and retry logic.
func (b *ChatBuilder) GetResponse(ctx context.Context) (*RunResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return execute(ctx, b.client, OperationChat, 0, "",
		func(ctx context.Context) (*RunResponse, error) {
			return b.client.gateway.Chat(ctx, &b.req)
		})
}

// Stream sends the messages and returns a streaming response.
// It applies validation and telemetry; streams are never retried.
func (b *ChatBuilder) Stream(ctx context.Context) (*Stream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return executeStream(ctx, b.client, OperationChat, 0, "",
		func(ctx context.Context) (*Stream, error) {
			return b.client.gateway.ChatStream(ctx, &b.req)
		})
}

// Log returns a LogBuilder for recording an externally produced
// completion against the prompt document at path.
func (c *Client) Log(path string) *LogBuilder {
	return &LogBuilder{
		client: c,
		req: LogRequest{
			Path: path,
		},
	}
}

// LogBuilder provides a fluent API for building document log requests.
// LogBuilder is NOT thread-safe and should not be shared across goroutines.
type LogBuilder struct {
	client *Client
	req    LogRequest
}

// Project overrides the client default project id.
func (b *LogBuilder) Project(id uint64) *LogBuilder {
	b.req.ProjectID = id
	return b
}

// Version overrides the client default version uuid.
func (b *LogBuilder) Version(id string) *LogBuilder {
	b.req.VersionID = id
	return b
}

// System appends a system message.
func (b *LogBuilder) System(s string) *LogBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message.
func (b *LogBuilder) User(s string) *LogBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s})
	return b
}

// Assistant appends an assistant message.
func (b *LogBuilder) Assistant(s string) *LogBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: s})
	return b
}

// Message appends a prepared message.
func (b *LogBuilder) Message(m Message) *LogBuilder {
	b.req.Messages = append(b.req.Messages, m)
	return b
}

// Response sets the completion text that was produced for the messages.
func (b *LogBuilder) Response(text string) *LogBuilder {
	b.req.Response = text
	return b
}

// validate checks that the request is valid.
func (b *LogBuilder) validate() error {
	if b.req.Path == "" {
		return ErrPathRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	if b.req.Response == "" {
		return ErrResponseRequired
	}
	return nil
}

// Create records the log and returns the created entry.
// Returns ErrNotSupported if the gateway cannot write logs.
func (b *LogBuilder) Create(ctx context.Context) (*LogResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	lw, ok := b.client.gateway.(LogWriter)
	if !ok {
		return nil, ErrNotSupported
	}
	return execute(ctx, b.client, OperationLog, b.req.ProjectID, b.req.Path,
		func(ctx context.Context) (*LogResponse, error) {
			return lw.CreateLog(ctx, &b.req)
		})
}

// Evaluate returns an EvaluateBuilder for triggering evaluations on the
// conversation identified by conversationID.
func (c *Client) Evaluate(conversationID string) *EvaluateBuilder {
	return &EvaluateBuilder{
		client: c,
		req: EvaluationRequest{
			ConversationID: conversationID,
		},
	}
}

// EvaluateBuilder provides a fluent API for building evaluation requests.
// EvaluateBuilder is NOT thread-safe and should not be shared across goroutines.
type EvaluateBuilder struct {
	client *Client
	req    EvaluationRequest
}

// Evaluation restricts the trigger to a specific evaluation uuid.
// May be called repeatedly; with no calls, every evaluation connected
// to the document runs.
func (b *EvaluateBuilder) Evaluation(id uuid.UUID) *EvaluateBuilder {
	b.req.EvaluationUUIDs = append(b.req.EvaluationUUIDs, id)
	return b
}

// validate checks that the request is valid.
func (b *EvaluateBuilder) validate() error {
	if b.req.ConversationID == "" {
		return ErrConversationRequired
	}
	return nil
}

// Trigger queues the evaluations and returns their uuids.
// Returns ErrNotSupported if the gateway cannot trigger evaluations.
func (b *EvaluateBuilder) Trigger(ctx context.Context) (*EvaluationResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	ev, ok := b.client.gateway.(Evaluator)
	if !ok {
		return nil, ErrNotSupported
	}
	return execute(ctx, b.client, OperationEvaluate, 0, "",
		func(ctx context.Context) (*EvaluationResponse, error) {
			return ev.Evaluate(ctx, &b.req)
		})
}

// Document returns a DocumentBuilder for fetching the prompt document
// at path.
func (c *Client) Document(path string) *DocumentBuilder {
	return &DocumentBuilder{
		client: c,
		req: DocumentRequest{
			Path: path,
		},
	}
}

// DocumentBuilder provides a fluent API for building document fetches.
// DocumentBuilder is NOT thread-safe and should not be shared across goroutines.
type DocumentBuilder struct {
	client *Client
	req    DocumentRequest
}

// Project overrides the client default project id.
func (b *DocumentBuilder) Project(id uint64) *DocumentBuilder {
	b.req.ProjectID = id
	return b
}

// Version overrides the client default version uuid.
func (b *DocumentBuilder) Version(id string) *DocumentBuilder {
	b.req.VersionID = id
	return b
}

// validate checks that the request is valid.
func (b *DocumentBuilder) validate() error {
	if b.req.Path == "" {
		return ErrPathRequired
	}
	return nil
}

// Get fetches the document.
// Returns ErrNotSupported if the gateway cannot fetch documents.
func (b *DocumentBuilder) Get(ctx context.Context) (*Document, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	df, ok := b.client.gateway.(DocumentFetcher)
	if !ok {
		return nil, ErrNotSupported
	}
	return execute(ctx, b.client, OperationDocument, b.req.ProjectID, b.req.Path,
		func(ctx context.Context) (*Document, error) {
			return df.GetDocument(ctx, &b.req)
		})
}

// usageOf reports the token usage carried by a response, if any.
func usageOf(v any) Usage {
	if r, ok := v.(*RunResponse); ok && r != nil {
		return r.Usage
	}
	return Usage{}
}

// execute runs a non-streaming gateway call with telemetry and the
// client retry policy.
func execute[T any](
	ctx context.Context,
	c *Client,
	op Operation,
	project uint64,
	path string,
	call func(context.Context) (*T, error),
) (*T, error) {
	start := time.Now()

	// Emit telemetry start
	c.telemetry.OnRequestStart(RequestStartEvent{
		Operation: op,
		Project:   project,
		Path:      path,
		Start:     start,
	})

	var resp *T
	var err error

	// Execute with retry logic
retryLoop:
	for attempt := 0; ; attempt++ {
		resp, err = call(ctx)
		if err == nil {
			break
		}

		// Check if we should retry
		delay, shouldRetry := c.retry.NextDelay(attempt, err)
		if !shouldRetry {
			break
		}

		// Wait before retry, respecting context cancellation
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break retryLoop
		case <-time.After(delay):
			continue
		}
	}

	// Emit telemetry end
	c.telemetry.OnRequestEnd(RequestEndEvent{
		Operation: op,
		Project:   project,
		Path:      path,
		Start:     start,
		End:       time.Now(),
		Usage:     usageOf(resp),
		Err:       err,
	})

	return resp, err
}

// executeStream runs a streaming gateway call with telemetry. The
// returned stream reports telemetry when it completes.
func executeStream(
	ctx context.Context,
	c *Client,
	op Operation,
	project uint64,
	path string,
	call func(context.Context) (*Stream, error),
) (*Stream, error) {
	start := time.Now()

	// Emit telemetry start
	c.telemetry.OnRequestStart(RequestStartEvent{
		Operation: op,
		Project:   project,
		Path:      path,
		Start:     start,
	})

	stream, err := call(ctx)
	if err != nil {
		// Emit telemetry end on immediate error
		c.telemetry.OnRequestEnd(RequestEndEvent{
			Operation: op,
			Project:   project,
			Path:      path,
			Start:     start,
			End:       time.Now(),
			Err:       err,
		})
		return nil, err
	}

	// Wrap the stream to emit telemetry when it completes
	return wrapStreamWithTelemetry(ctx, stream, c.telemetry, op, project, path, start), nil
}

// wrapStreamWithTelemetry forwards a Stream and emits telemetry once it
// ends. Usage is taken from the chain-complete event when one passes
// through.
func wrapStreamWithTelemetry(
	ctx context.Context,
	stream *Stream,
	hook TelemetryHook,
	op Operation,
	project uint64,
	path string,
	start time.Time,
) *Stream {
	events := make(chan Event, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		var usage Usage
		var finalErr error

	forward:
		for {
			select {
			case ev, ok := <-stream.Events:
				if !ok {
					break forward
				}
				if cc, isComplete := ev.(ChainCompleteEvent); isComplete {
					usage = cc.Response.Usage
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					finalErr = ctx.Err()
					break forward
				}
			case <-ctx.Done():
				finalErr = ctx.Err()
				break forward
			}
		}

		if finalErr == nil {
			// Surface a transport error if the gateway reported one
			if err, ok := <-stream.Err; ok && err != nil {
				finalErr = err
			}
		}
		if finalErr != nil {
			errs <- finalErr
		}

		// Emit telemetry end
		hook.OnRequestEnd(RequestEndEvent{
			Operation: op,
			Project:   project,
			Path:      path,
			Start:     start,
			End:       time.Now(),
			Usage:     usage,
			Err:       finalErr,
		})
	}()

	return &Stream{
		Events: events,
		Err:    errs,
	}
}
