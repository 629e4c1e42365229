package api

import (
	"context"
	"net/http"

	"github.com/dl-alexandre/gxlib/internal/types"
)

// Version returns the Galaxy release. The endpoint needs no API key.
func (c *Client) Version(ctx context.Context) (*types.ServerVersion, error) {
	reqCtx := NewRequestContext(types.RequestTypeGet)

	return Execute(ctx, c, reqCtx, func(ctx context.Context) (*types.ServerVersion, error) {
		var v types.ServerVersion
		if err := c.get(ctx, "/api/version", &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}

// WhoAmI returns the account the API key belongs to
func (c *Client) WhoAmI(ctx context.Context) (*types.User, error) {
	reqCtx := NewRequestContext(types.RequestTypeAuth)

	return Execute(ctx, c, reqCtx, func(ctx context.Context) (*types.User, error) {
		var u types.User
		if err := c.do(ctx, http.MethodGet, "/api/whoami", nil, nil, &u); err != nil {
			return nil, err
		}
		return &u, nil
	})
}
