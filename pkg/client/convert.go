package client

import (
	"context"
	"fmt"

	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Validate checks a SMILES string and returns its canonical form and
// descriptors. An invalid structure is not an error: the response carries
// valid=false plus a reason.
func (c *Client) Validate(ctx context.Context, smiles string) (*mtypes.ValidateResponse, error) {
	if smiles == "" {
		return nil, fmt.Errorf("smiles is required")
	}

	var resp mtypes.ValidateResponse
	if err := c.post(ctx, "/api/v1/validate", &mtypes.ValidateRequest{SMILES: smiles}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export converts a SMILES structure to the requested file format.
func (c *Client) Export(ctx context.Context, req *mtypes.ExportRequest) (*mtypes.ExportResponse, error) {
	if req == nil || req.SMILES == "" {
		return nil, fmt.Errorf("smiles is required")
	}
	if req.Format == "" {
		return nil, fmt.Errorf("format is required")
	}

	var resp mtypes.ExportResponse
	if err := c.post(ctx, "/api/v1/export", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
