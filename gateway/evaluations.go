package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
)

// evaluateURL formats the conversation evaluate endpoint.
func (c *Client) evaluateURL(conversationID string) string {
	return fmt.Sprintf("%s/conversations/%s/evaluate", c.config.BaseURL, conversationID)
}

// Evaluate triggers evaluations on a conversation. With no evaluation
// uuids, every evaluation connected to the document runs.
func (c *Client) Evaluate(ctx context.Context, req *core.EvaluationRequest) (*core.EvaluationResponse, error) {
	if req.ConversationID == "" {
		return nil, core.ErrConversationRequired
	}

	body := evaluateRequestBody{
		EvaluationUUIDs: req.EvaluationUUIDs,
	}

	var out core.EvaluationResponse
	if err := c.doJSON(ctx, http.MethodPost, c.evaluateURL(req.ConversationID), &body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
