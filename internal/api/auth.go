package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/dl-alexandre/gxlib/pkg/version"
	"golang.org/x/oauth2"
)

// baseAuthSource exchanges an email/password pair for the user's Galaxy
// API key through /api/authenticate/baseauth.
type baseAuthSource struct {
	ctx        context.Context
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
}

// NewPasswordTokenSource returns a TokenSource yielding the Galaxy API key
// for email/password. The key is fetched once and then reused; Galaxy keys
// do not expire, so the returned token carries no expiry.
func NewPasswordTokenSource(ctx context.Context, baseURL, email, password string, httpClient *http.Client) oauth2.TokenSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return oauth2.ReuseTokenSource(nil, &baseAuthSource{
		ctx:        ctx,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		email:      email,
		password:   password,
		httpClient: httpClient,
	})
}

// NewAPIKeyTokenSource wraps a known API key
func NewAPIKeyTokenSource(apiKey string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: utils.APIKeyHeader})
}

func (s *baseAuthSource) Token() (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.baseURL+"/api/authenticate/baseauth", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.email, s.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := decodeResponse(resp, &payload); err != nil {
		return nil, err
	}
	if payload.APIKey == "" {
		return nil, errors.New("galaxy returned an empty api key")
	}
	return &oauth2.Token{AccessToken: payload.APIKey, TokenType: utils.APIKeyHeader}, nil
}
