package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/petal-labs/latitude-go/core"
)

const (
	testRunUUID      = "123e4567-e89b-12d3-a456-426614174000"
	testDocumentUUID = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

// runEnvelope is the snake_case response body of a non-streaming run.
const runEnvelope = `{
	"uuid": "123e4567-e89b-12d3-a456-426614174000",
	"response": {
		"text": "Hello from Latitude",
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}
}`

func TestRunSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/projects/123/versions/live/documents/run" {
			t.Errorf("Path = %q, want /projects/123/versions/live/documents/run", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization header incorrect")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type header incorrect")
		}

		var body runRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body decode: %v", err)
		}
		if body.Path != "greeting" {
			t.Errorf("body.Path = %q, want %q", body.Path, "greeting")
		}
		if body.Stream {
			t.Error("body.Stream = true, want false")
		}
		if body.Parameters["name"] != "Ada" {
			t.Errorf("body.Parameters[name] = %v, want Ada", body.Parameters["name"])
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(runEnvelope))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(123))
	resp, err := c.Run(context.Background(), &core.RunRequest{
		Path:       "greeting",
		Parameters: map[string]any{"name": "Ada"},
	})

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if resp.UUID.String() != testRunUUID {
		t.Errorf("UUID = %q, want %q", resp.UUID, testRunUUID)
	}
	if resp.Text != "Hello from Latitude" {
		t.Errorf("Text = %q, want %q", resp.Text, "Hello from Latitude")
	}
	if resp.Usage.PromptTokens != 10 {
		t.Errorf("Usage.PromptTokens = %d, want 10", resp.Usage.PromptTokens)
	}
	if resp.Usage.CompletionTokens != 5 {
		t.Errorf("Usage.CompletionTokens = %d, want 5", resp.Usage.CompletionTokens)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage.TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}
}

func TestRunRequestOverridesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/9/versions/draft-uuid/documents/run" {
			t.Errorf("Path = %q, want /projects/9/versions/draft-uuid/documents/run", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(runEnvelope))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(123), WithVersionID("v1"))
	_, err := c.Run(context.Background(), &core.RunRequest{
		Path:      "greeting",
		ProjectID: 9,
		VersionID: "draft-uuid",
	})

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunMissingProjectID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL))
	_, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"})

	if !errors.Is(err, core.ErrProjectRequired) {
		t.Errorf("error = %v, want ErrProjectRequired", err)
	}
}

func TestRunNilParametersSentAsEmptyObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("request body decode: %v", err)
		}
		if string(raw["parameters"]) != "{}" {
			t.Errorf("parameters = %s, want {}", raw["parameters"])
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(runEnvelope))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(1))
	if _, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, core.ErrBadRequest},
		{http.StatusUnauthorized, core.ErrUnauthorized},
		{http.StatusForbidden, core.ErrForbidden},
		{http.StatusNotFound, core.ErrNotFound},
		{http.StatusConflict, core.ErrConflict},
		{http.StatusUnprocessableEntity, core.ErrUnprocessable},
		{http.StatusTooManyRequests, core.ErrRateLimited},
		{http.StatusInternalServerError, core.ErrServer},
		{http.StatusBadGateway, core.ErrServer},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"name":"LatitudeError","message":"something went wrong","errorCode":"unexpected_error"}`))
			}))
			defer server.Close()

			c := New("test-key", WithBaseURL(server.URL), WithProjectID(1))
			_, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"})

			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunErrorDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{
			"name": "DocumentRunError",
			"message": "variable [user] not provided",
			"errorCode": "chain_compile_error",
			"details": {"compileCode": "variable-not-declared", "message": "variable [user] not provided"},
			"dbErrorRef": {"entityUuid": "0f8fad5b-d9cb-469f-a165-70867728950e", "entityType": "run_error"}
		}`))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(1))
	_, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"})

	if !errors.Is(err, core.ErrUnprocessable) {
		t.Fatalf("error = %v, want ErrUnprocessable", err)
	}

	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", apiErr.Status)
	}
	if apiErr.Code != core.RunErrorCodeChainCompile {
		t.Errorf("Code = %q, want %q", apiErr.Code, core.RunErrorCodeChainCompile)
	}
	if apiErr.Name != "DocumentRunError" {
		t.Errorf("Name = %q, want %q", apiErr.Name, "DocumentRunError")
	}
	if apiErr.DBRef == nil || apiErr.DBRef.EntityUUID != testDocumentUUID {
		t.Errorf("DBRef = %+v, want entity uuid %s", apiErr.DBRef, testDocumentUUID)
	}

	var details core.RunErrorDetails
	if err := json.Unmarshal(apiErr.Details, &details); err != nil {
		t.Fatalf("details decode: %v", err)
	}
	if details.CompileCode != "variable-not-declared" {
		t.Errorf("CompileCode = %q, want %q", details.CompileCode, "variable-not-declared")
	}
}

func TestRunStatusCheckedBeforeDecode(t *testing.T) {
	// Error responses are not valid run envelopes; the status must be
	// inspected before any decoding happens.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(1))
	_, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"})

	if !errors.Is(err, core.ErrServer) {
		t.Errorf("error = %v, want ErrServer", err)
	}
	if errors.Is(err, core.ErrDecode) {
		t.Error("error should not be a decode error")
	}
}

func TestRunDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(1))
	_, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"})

	if !errors.Is(err, core.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestRunContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := c.Run(ctx, &core.RunRequest{Path: "greeting"})
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/conversations/conv-123/chat" {
			t.Errorf("Path = %q, want /conversations/conv-123/chat", r.URL.Path)
		}

		var raw struct {
			Messages []map[string]any `json:"messages"`
			Stream   bool             `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("request body decode: %v", err)
		}
		if len(raw.Messages) != 1 {
			t.Fatalf("len(messages) = %d, want 1", len(raw.Messages))
		}
		if raw.Messages[0]["role"] != "user" {
			t.Errorf("messages[0].role = %v, want user", raw.Messages[0]["role"])
		}
		if raw.Messages[0]["content"] != "And in French?" {
			t.Errorf("messages[0].content = %v, want %q", raw.Messages[0]["content"], "And in French?")
		}
		if raw.Stream {
			t.Error("stream = true, want false")
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(runEnvelope))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL))
	resp, err := c.Chat(context.Background(), &core.ChatRequest{
		ConversationID: "conv-123",
		Messages: []core.Message{
			core.UserMessage("And in French?"),
		},
	})

	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Text != "Hello from Latitude" {
		t.Errorf("Text = %q, want %q", resp.Text, "Hello from Latitude")
	}
}

func TestChatMissingConversationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL))
	_, err := c.Chat(context.Background(), &core.ChatRequest{
		Messages: []core.Message{core.UserMessage("Hi")},
	})

	if !errors.Is(err, core.ErrConversationRequired) {
		t.Errorf("error = %v, want ErrConversationRequired", err)
	}
}

func TestCreateLogSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/3/versions/live/documents/logs" {
			t.Errorf("Path = %q, want /projects/3/versions/live/documents/logs", r.URL.Path)
		}

		var body logRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body decode: %v", err)
		}
		if body.Path != "greeting" {
			t.Errorf("body.Path = %q, want %q", body.Path, "greeting")
		}
		if body.Response != "Bonjour!" {
			t.Errorf("body.Response = %q, want %q", body.Response, "Bonjour!")
		}
		if len(body.Messages) != 1 {
			t.Errorf("len(messages) = %d, want 1", len(body.Messages))
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"id": 321,
			"uuid": "0f8fad5b-d9cb-469f-a165-70867728950e",
			"documentUuid": "123e4567-e89b-12d3-a456-426614174000",
			"commitId": 11,
			"resolvedContent": "Say hello",
			"contentHash": "abc123",
			"source": "api",
			"createdAt": "2024-11-05T10:00:00.000Z",
			"updatedAt": "2024-11-05T10:00:00.000Z"
		}`))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(3))
	resp, err := c.CreateLog(context.Background(), &core.LogRequest{
		Path:     "greeting",
		Messages: []core.Message{core.UserMessage("Say hello in French")},
		Response: "Bonjour!",
	})

	if err != nil {
		t.Fatalf("CreateLog() error = %v", err)
	}
	if resp.ID != 321 {
		t.Errorf("ID = %d, want 321", resp.ID)
	}
	if resp.UUID.String() != testDocumentUUID {
		t.Errorf("UUID = %q, want %q", resp.UUID, testDocumentUUID)
	}
	if resp.DocumentUUID.String() != testRunUUID {
		t.Errorf("DocumentUUID = %q, want %q", resp.DocumentUUID, testRunUUID)
	}
	if resp.CommitID != 11 {
		t.Errorf("CommitID = %d, want 11", resp.CommitID)
	}
	if resp.Source != "api" {
		t.Errorf("Source = %q, want %q", resp.Source, "api")
	}
}

func TestEvaluateSuccess(t *testing.T) {
	evalUUID := uuid.MustParse(testDocumentUUID)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/conv-9/evaluate" {
			t.Errorf("Path = %q, want /conversations/conv-9/evaluate", r.URL.Path)
		}

		var body evaluateRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body decode: %v", err)
		}
		if len(body.EvaluationUUIDs) != 1 || body.EvaluationUUIDs[0] != evalUUID {
			t.Errorf("evaluationUuids = %v, want [%s]", body.EvaluationUUIDs, evalUUID)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"evaluations": ["0f8fad5b-d9cb-469f-a165-70867728950e"]}`))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL))
	resp, err := c.Evaluate(context.Background(), &core.EvaluationRequest{
		ConversationID:  "conv-9",
		EvaluationUUIDs: []uuid.UUID{evalUUID},
	})

	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(resp.Evaluations) != 1 || resp.Evaluations[0] != evalUUID {
		t.Errorf("Evaluations = %v, want [%s]", resp.Evaluations, evalUUID)
	}
}

func TestEvaluateWithoutUUIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("request body decode: %v", err)
		}
		// No uuid list means the server runs every evaluation.
		if _, present := raw["evaluationUuids"]; present {
			t.Error("evaluationUuids should be omitted when empty")
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"evaluations": []}`))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL))
	_, err := c.Evaluate(context.Background(), &core.EvaluationRequest{
		ConversationID: "conv-9",
	})

	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
}

func TestGetDocumentSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %q, want GET", r.Method)
		}
		// Nested document paths map to URL path segments.
		if r.URL.Path != "/projects/5/versions/live/documents/folder/greeting" {
			t.Errorf("Path = %q, want /projects/5/versions/live/documents/folder/greeting", r.URL.Path)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"id": 77,
			"documentUuid": "123e4567-e89b-12d3-a456-426614174000",
			"path": "folder/greeting",
			"content": "---\nprovider: openai\n---\nSay hello",
			"resolvedContent": "Say hello",
			"contentHash": "hash-1",
			"commitId": 4
		}`))
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(5))
	doc, err := c.GetDocument(context.Background(), &core.DocumentRequest{
		Path: "folder/greeting",
	})

	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.ID != 77 {
		t.Errorf("ID = %d, want 77", doc.ID)
	}
	if doc.Path != "folder/greeting" {
		t.Errorf("Path = %q, want %q", doc.Path, "folder/greeting")
	}
	if doc.DocumentUUID.String() != testRunUUID {
		t.Errorf("DocumentUUID = %q, want %q", doc.DocumentUUID, testRunUUID)
	}
	if doc.CommitID != 4 {
		t.Errorf("CommitID = %d, want 4", doc.CommitID)
	}
}

func TestGetDocumentMissingPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(5))
	_, err := c.GetDocument(context.Background(), &core.DocumentRequest{})

	if !errors.Is(err, core.ErrPathRequired) {
		t.Errorf("error = %v, want ErrPathRequired", err)
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	// A zero burst limiter rejects every request immediately.
	c := New("test-key",
		WithBaseURL(server.URL),
		WithProjectID(1),
		WithRateLimiter(rate.NewLimiter(rate.Limit(1), 0)),
	)

	_, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"})
	if err == nil {
		t.Error("expected error from rate limiter")
	}
}

func TestCustomHeadersSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Workspace") != "acme" {
			t.Errorf("X-Workspace = %q, want %q", r.Header.Get("X-Workspace"), "acme")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(runEnvelope))
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("X-Workspace", "acme")

	c := New("test-key", WithBaseURL(server.URL), WithProjectID(1), WithHeaders(headers))
	if _, err := c.Run(context.Background(), &core.RunRequest{Path: "greeting"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
