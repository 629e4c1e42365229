package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

// ListLibraries returns the non-deleted libraries whose name equals name.
// An empty name returns every library.
func (c *Client) ListLibraries(ctx context.Context, name string) ([]*types.Library, error) {
	reqCtx := NewRequestContext(types.RequestTypeList)

	all, err := Execute(ctx, c, reqCtx, func(ctx context.Context) ([]*types.Library, error) {
		var libs []*types.Library
		err := c.do(ctx, http.MethodGet, "/api/libraries", url.Values{"deleted": {"false"}}, nil, &libs)
		return libs, err
	})
	if err != nil {
		return nil, err
	}

	if name == "" {
		return all, nil
	}
	matches := make([]*types.Library, 0, len(all))
	for _, lib := range all {
		if lib.Name == name {
			matches = append(matches, lib)
		}
	}
	return matches, nil
}

// GetLibrary fetches a single library
func (c *Client) GetLibrary(ctx context.Context, id string) (*types.Library, error) {
	reqCtx := NewRequestContext(types.RequestTypeGet)
	reqCtx.LibraryID = id

	return Execute(ctx, c, reqCtx, func(ctx context.Context) (*types.Library, error) {
		var lib types.Library
		if err := c.do(ctx, http.MethodGet, "/api/libraries/"+url.PathEscape(id), nil, nil, &lib); err != nil {
			return nil, err
		}
		return &lib, nil
	})
}

// DeleteLibrary marks a library deleted
func (c *Client) DeleteLibrary(ctx context.Context, id string) error {
	reqCtx := NewRequestContext(types.RequestTypeMutation)
	reqCtx.LibraryID = id

	_, err := Execute(ctx, c, reqCtx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodDelete, "/api/libraries/"+url.PathEscape(id), nil, nil, nil)
	})
	return err
}

// CreateLibrary creates a new library
func (c *Client) CreateLibrary(ctx context.Context, name, description string) (*types.Library, error) {
	reqCtx := NewRequestContext(types.RequestTypeMutation)

	body := map[string]string{
		"name":        name,
		"description": description,
		"synopsis":    "",
	}
	lib, err := Execute(ctx, c, reqCtx, func(ctx context.Context) (*types.Library, error) {
		var lib types.Library
		if err := c.do(ctx, http.MethodPost, "/api/libraries", nil, body, &lib); err != nil {
			return nil, err
		}
		return &lib, nil
	})
	if err != nil {
		return nil, err
	}
	if lib.ID == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeServerError,
			fmt.Sprintf("galaxy created library %q without an id", name)).Build())
	}
	return lib, nil
}
