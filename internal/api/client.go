package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/dl-alexandre/gxlib/pkg/version"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Client talks to the Galaxy data library API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     logging.Logger
}

// NewClient creates a new Galaxy API client. tokens supplies the API key
// sent with every request; httpClient may be nil.
func NewClient(baseURL string, tokens oauth2.TokenSource, httpClient *http.Client, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
	}
}

// NewRequestContext creates a new request context with trace ID
func NewRequestContext(requestType types.RequestType) *types.RequestContext {
	return &types.RequestContext{
		RequestType: requestType,
		TraceID:     uuid.New().String(),
	}
}

// Execute runs one API call, logging its outcome and classifying failures.
// There are no retries: the first error is returned.
func Execute[T any](ctx context.Context, client *Client, reqCtx *types.RequestContext, fn func(ctx context.Context) (T, error)) (T, error) {
	logger := client.logger.WithTraceID(reqCtx.TraceID)
	logger.Debug("API operation starting",
		logging.F("requestType", reqCtx.RequestType),
		logging.F("libraryId", reqCtx.LibraryID),
		logging.F("folderId", reqCtx.FolderID),
	)

	ctx = logging.ContextWithTraceID(ctx, reqCtx.TraceID)
	start := time.Now()

	result, err := fn(ctx)
	duration := time.Since(start)
	if err != nil {
		logger.Error("API operation failed",
			logging.F("requestType", reqCtx.RequestType),
			logging.F("duration_ms", duration.Milliseconds()),
			logging.F("error", err.Error()),
		)
		return result, classifyError(err, reqCtx, client.logger)
	}

	logger.Debug("API operation completed",
		logging.F("requestType", reqCtx.RequestType),
		logging.F("duration_ms", duration.Milliseconds()),
	)
	return result, nil
}

// do performs a JSON request against path (relative to /api) and decodes
// the response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return err
		}
		req.Header.Set(utils.APIKeyHeader, token.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// get performs an unauthenticated GET
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build GET %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return newHTTPError(resp, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", resp.Request.URL.Path, err)
	}
	return nil
}
