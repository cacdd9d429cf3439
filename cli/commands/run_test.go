package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/petal-labs/latitude-go/core"
)

func TestRunCommand(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.gw.runResp = &core.RunResponse{
		UUID:  uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Text:  "Hello from Latitude",
		Usage: core.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}

	if err := ta.execute("run", "onboarding/greeting", "--param", "name=Ada"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if ta.stdout.String() != "Hello from Latitude\n" {
		t.Errorf("stdout = %q", ta.stdout.String())
	}

	req := ta.gw.lastRun
	if req == nil {
		t.Fatal("gateway did not receive a run request")
	}
	if req.Path != "onboarding/greeting" {
		t.Errorf("Path = %q, want onboarding/greeting", req.Path)
	}
	if req.Parameters["name"] != "Ada" {
		t.Errorf("Parameters[name] = %v, want Ada", req.Parameters["name"])
	}
}

func TestRunCommandJSON(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.gw.runResp = &core.RunResponse{
		UUID:  uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Text:  "Hello",
		Usage: core.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}

	if err := ta.execute("run", "greeting", "--json"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	var output map[string]any
	if err := json.Unmarshal(ta.stdout.Bytes(), &output); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, ta.stdout.String())
	}

	if output["uuid"] != "123e4567-e89b-12d3-a456-426614174000" {
		t.Errorf("uuid = %v", output["uuid"])
	}
	if output["text"] != "Hello" {
		t.Errorf("text = %v", output["text"])
	}

	usage, ok := output["usage"].(map[string]any)
	if !ok {
		t.Fatalf("usage = %T, want object", output["usage"])
	}
	if usage["total_tokens"] != float64(15) {
		t.Errorf("total_tokens = %v, want 15", usage["total_tokens"])
	}
}

func TestRunCommandStream(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.gw.streamEvents = []core.Event{
		core.TextDeltaEvent{TextDelta: "Hello"},
		core.TextDeltaEvent{TextDelta: " world"},
		core.ChainCompleteEvent{
			Response: core.Response{
				Text:            "Hello world",
				DocumentLogUUID: "123e4567-e89b-12d3-a456-426614174000",
				Usage:           core.Usage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6},
			},
		},
	}

	if err := ta.execute("run", "greeting", "--stream"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if ta.stdout.String() != "Hello world\n" {
		t.Errorf("stdout = %q, want deltas then newline", ta.stdout.String())
	}
}

func TestRunCommandStreamJSON(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.gw.streamEvents = []core.Event{
		core.TextDeltaEvent{TextDelta: "Hello"},
		core.ChainCompleteEvent{
			Response: core.Response{
				Text:            "Hello world",
				DocumentLogUUID: "123e4567-e89b-12d3-a456-426614174000",
				Usage:           core.Usage{TotalTokens: 6},
			},
		},
	}

	if err := ta.execute("run", "greeting", "--stream", "--json"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	var output map[string]any
	if err := json.Unmarshal(ta.stdout.Bytes(), &output); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, ta.stdout.String())
	}

	if output["text"] != "Hello world" {
		t.Errorf("text = %v, want final text from chain-complete", output["text"])
	}
	if output["uuid"] != "123e4567-e89b-12d3-a456-426614174000" {
		t.Errorf("uuid = %v", output["uuid"])
	}
}

func TestRunCommandStreamErrorEvent(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.gw.streamEvents = []core.Event{
		core.TextDeltaEvent{TextDelta: "partial"},
		core.ErrorEvent{Message: "provider quota exceeded", Code: core.RunErrorCodeAIRun},
	}

	err := ta.execute("run", "greeting", "--stream")
	if err == nil {
		t.Fatal("execute() should surface the stream error event")
	}

	if code := exitCodeOf(t, err); code != ExitAPI {
		t.Errorf("exit code = %d, want %d", code, ExitAPI)
	}
	if !strings.Contains(err.Error(), "provider quota exceeded") {
		t.Errorf("error = %q", err)
	}
}

func TestRunCommandAPIError(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.gw.runErr = &core.APIError{
		Status:  401,
		Message: "invalid api key",
		Err:     core.ErrUnauthorized,
	}

	err := ta.execute("run", "greeting")
	if err == nil {
		t.Fatal("execute() should surface the API error")
	}

	if code := exitCodeOf(t, err); code != ExitAPI {
		t.Errorf("exit code = %d, want %d", code, ExitAPI)
	}
	if !strings.Contains(ta.stderr.String(), "invalid api key") {
		t.Errorf("stderr = %q, want the API message", ta.stderr.String())
	}
}

func TestRunCommandInvalidParam(t *testing.T) {
	ta := newTestApp(t, nil)

	err := ta.execute("run", "greeting", "--param", "noequals")
	if err == nil {
		t.Fatal("execute() should reject malformed --param")
	}

	if code := exitCodeOf(t, err); code != ExitValidation {
		t.Errorf("exit code = %d, want %d", code, ExitValidation)
	}
	if ta.gw.lastRun != nil {
		t.Error("gateway should not be called for invalid flags")
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		key   string
		want  any
	}{
		{"string value", []string{"name=Ada"}, "name", "Ada"},
		{"number value", []string{"count=3"}, "count", float64(3)},
		{"bool value", []string{"enabled=true"}, "enabled", true},
		{"quoted string stays string", []string{`label="3"`}, "label", "3"},
		{"empty value", []string{"note="}, "note", ""},
		{"value with equals", []string{"expr=a=b"}, "expr", "a=b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := parseParams(tt.pairs)
			if err != nil {
				t.Fatalf("parseParams(%v) error = %v", tt.pairs, err)
			}
			if got := params[tt.key]; got != tt.want {
				t.Errorf("params[%s] = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParseParamsObjectValue(t *testing.T) {
	params, err := parseParams([]string{`user={"name":"Ada","age":36}`})
	if err != nil {
		t.Fatalf("parseParams() error = %v", err)
	}

	obj, ok := params["user"].(map[string]any)
	if !ok {
		t.Fatalf("params[user] = %T, want object", params["user"])
	}
	if obj["name"] != "Ada" {
		t.Errorf("user.name = %v, want Ada", obj["name"])
	}
}

func TestParseParamsInvalid(t *testing.T) {
	tests := []struct {
		name string
		pair string
	}{
		{"no equals", "noequals"},
		{"empty key", "=value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseParams([]string{tt.pair}); err == nil {
				t.Errorf("parseParams(%q) should fail", tt.pair)
			}
		})
	}
}

func TestParseParamsEmpty(t *testing.T) {
	params, err := parseParams(nil)
	if err != nil {
		t.Fatalf("parseParams(nil) error = %v", err)
	}
	if params != nil {
		t.Errorf("parseParams(nil) = %v, want nil", params)
	}
}
