package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
)

// runURL formats the document run endpoint.
func (c *Client) runURL(projectID uint64, versionID string) string {
	return fmt.Sprintf("%s/projects/%d/versions/%s/documents/run", c.config.BaseURL, projectID, versionID)
}

// runBody builds the wire request for a document run.
func runBody(req *core.RunRequest, stream bool) runRequestBody {
	params := req.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return runRequestBody{
		Path:       req.Path,
		Parameters: params,
		Stream:     stream,
	}
}

// Run executes a prompt document and waits for the final response.
func (c *Client) Run(ctx context.Context, req *core.RunRequest) (*core.RunResponse, error) {
	projectID, err := c.resolveProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	versionID := c.resolveVersion(req.VersionID)

	body := runBody(req, false)

	var wire runResponseBody
	if err := c.doJSON(ctx, http.MethodPost, c.runURL(projectID, versionID), &body, &wire); err != nil {
		return nil, err
	}

	return mapRunResponse(&wire)
}

// RunStream executes a prompt document and streams events as they are
// produced.
func (c *Client) RunStream(ctx context.Context, req *core.RunRequest) (*core.Stream, error) {
	projectID, err := c.resolveProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	versionID := c.resolveVersion(req.VersionID)

	body := runBody(req, true)

	resp, err := c.startStream(ctx, c.runURL(projectID, versionID), &body)
	if err != nil {
		return nil, err
	}

	return c.openStream(ctx, resp.Body), nil
}
