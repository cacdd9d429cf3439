package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
)

// documentURL formats the document fetch endpoint. Document paths may
// contain slashes and map to URL path segments unescaped.
func (c *Client) documentURL(projectID uint64, versionID, path string) string {
	return fmt.Sprintf("%s/projects/%d/versions/%s/documents/%s", c.config.BaseURL, projectID, versionID, path)
}

// GetDocument fetches a prompt document together with its resolved
// content.
func (c *Client) GetDocument(ctx context.Context, req *core.DocumentRequest) (*core.Document, error) {
	projectID, err := c.resolveProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, core.ErrPathRequired
	}
	versionID := c.resolveVersion(req.VersionID)

	var out core.Document
	if err := c.doJSON(ctx, http.MethodGet, c.documentURL(projectID, versionID, req.Path), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
