package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
)

// logsURL formats the document logs endpoint.
func (c *Client) logsURL(projectID uint64, versionID string) string {
	return fmt.Sprintf("%s/projects/%d/versions/%s/documents/logs", c.config.BaseURL, projectID, versionID)
}

// CreateLog records an externally produced completion as a document
// log.
func (c *Client) CreateLog(ctx context.Context, req *core.LogRequest) (*core.LogResponse, error) {
	projectID, err := c.resolveProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	versionID := c.resolveVersion(req.VersionID)

	body := logRequestBody{
		Path:     req.Path,
		Messages: req.Messages,
		Response: req.Response,
	}

	var out core.LogResponse
	if err := c.doJSON(ctx, http.MethodPost, c.logsURL(projectID, versionID), &body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
