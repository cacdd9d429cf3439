package gateway

import (
	"github.com/google/uuid"

	"github.com/petal-labs/latitude-go/core"
)

// Request types

// runRequestBody is the request body for a document run.
type runRequestBody struct {
	Path       string         `json:"path"`
	Parameters map[string]any `json:"parameters"`
	Stream     bool           `json:"stream"`
}

// chatRequestBody is the request body for adding messages to a
// conversation.
type chatRequestBody struct {
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream"`
}

// logRequestBody is the request body for creating a document log.
type logRequestBody struct {
	Path     string         `json:"path"`
	Messages []core.Message `json:"messages"`
	Response string         `json:"response"`
}

// evaluateRequestBody is the request body for triggering evaluations.
// An omitted uuid list triggers every evaluation connected to the
// conversation's document.
type evaluateRequestBody struct {
	EvaluationUUIDs []uuid.UUID `json:"evaluationUuids,omitempty"`
}

// Response types

// runResponseBody is the response body for a non-streaming document
// run. Usage field names arrive in snake_case, unlike the camelCase
// used by streamed events.
type runResponseBody struct {
	UUID     string          `json:"uuid"`
	Response *responseDetail `json:"response"`
}

// responseDetail is the nested response object of a run response.
type responseDetail struct {
	Text  string      `json:"text"`
	Usage usageDetail `json:"usage"`
}

// usageDetail is the token accounting of a run response.
type usageDetail struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// mapRunResponse converts a wire run response to the core
// representation.
func mapRunResponse(body *runResponseBody) (*core.RunResponse, error) {
	out := &core.RunResponse{}

	if body.UUID != "" {
		id, err := uuid.Parse(body.UUID)
		if err != nil {
			return nil, newDecodeError(err)
		}
		out.UUID = id
	}

	if body.Response != nil {
		out.Text = body.Response.Text
		out.Usage = core.Usage{
			PromptTokens:     body.Response.Usage.PromptTokens,
			CompletionTokens: body.Response.Usage.CompletionTokens,
			TotalTokens:      body.Response.Usage.TotalTokens,
		}
	}

	return out, nil
}
