// Package authclient authenticates blog requests by delegating token
// verification to the auth service over HTTP.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/titanium/backend/config"
)

var (
	// ErrHeaderMalformed means the Authorization header is missing or is
	// not exactly "Bearer <token>".
	ErrHeaderMalformed = errors.New("authorization header missing or invalid")

	// ErrTokenRejected means the auth service saw the token and said no.
	ErrTokenRejected = errors.New("invalid or expired token")

	// ErrUpstreamUnavailable means the auth service could not be reached;
	// nothing is known about the token itself.
	ErrUpstreamUnavailable = errors.New("auth service not reachable")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg config.ServicesConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.AuthServiceURL, "/"),
		httpClient: &http.Client{Timeout: cfg.ClientTimeout},
	}
}

type verifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Username string `json:"username"`
	} `json:"data"`
}

// Authenticate resolves the Authorization header to a username. The header
// is parsed locally; the token itself is only ever judged by the auth
// service, so the two services cannot disagree about validity.
func (c *Client) Authenticate(ctx context.Context, authorizationHeader string) (string, error) {
	parts := strings.Split(authorizationHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrHeaderMalformed
	}
	token := parts[1]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/verify", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode == http.StatusOK {
			return "", ErrUpstreamUnavailable
		}
		return "", ErrTokenRejected
	}

	if resp.StatusCode != http.StatusOK || body.Status != "success" {
		return "", ErrTokenRejected
	}
	if body.Data.Username == "" {
		// a "valid" token with no subject is worthless
		return "", ErrTokenRejected
	}
	return body.Data.Username, nil
}
