package client

import (
	"context"
	"fmt"

	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Search resolves a query across the server's local store and external
// sources.
func (c *Client) Search(ctx context.Context, req *mtypes.SearchRequest) (*mtypes.SearchResponse, error) {
	if req == nil || req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	var resp mtypes.SearchResponse
	if err := c.post(ctx, "/api/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists recently recorded searches, newest first. A non-positive
// limit uses the server default.
func (c *Client) History(ctx context.Context, limit int) (*mtypes.HistoryResponse, error) {
	path := "/api/v1/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var resp mtypes.HistoryResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
