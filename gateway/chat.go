package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
)

// chatURL formats the conversation chat endpoint.
func (c *Client) chatURL(conversationID string) string {
	return fmt.Sprintf("%s/conversations/%s/chat", c.config.BaseURL, conversationID)
}

// Chat appends messages to an existing conversation and waits for the
// final response.
func (c *Client) Chat(ctx context.Context, req *core.ChatRequest) (*core.RunResponse, error) {
	if req.ConversationID == "" {
		return nil, core.ErrConversationRequired
	}

	body := chatRequestBody{
		Messages: req.Messages,
		Stream:   false,
	}

	var wire runResponseBody
	if err := c.doJSON(ctx, http.MethodPost, c.chatURL(req.ConversationID), &body, &wire); err != nil {
		return nil, err
	}

	return mapRunResponse(&wire)
}

// ChatStream appends messages to an existing conversation and streams
// events as they are produced.
func (c *Client) ChatStream(ctx context.Context, req *core.ChatRequest) (*core.Stream, error) {
	if req.ConversationID == "" {
		return nil, core.ErrConversationRequired
	}

	body := chatRequestBody{
		Messages: req.Messages,
		Stream:   true,
	}

	resp, err := c.startStream(ctx, c.chatURL(req.ConversationID), &body)
	if err != nil {
		return nil, err
	}

	return c.openStream(ctx, resp.Body), nil
}
