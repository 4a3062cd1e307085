package client

import (
	"context"
	"net/http"
	"net/url"

	"bookmyworkspace/pkg/model"
)

type WorkspaceClient struct {
	httpClient *HttpClient
}

func NewWorkspaceClient(baseUrl string) *WorkspaceClient {
	return &WorkspaceClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *WorkspaceClient) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/workspaces/id/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	return decodeData[*model.Workspace](resp, "workspace")
}
