// Package userclient lets the auth service check credentials against the
// user service, which owns all password material.
package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/titanium/backend/config"
)

var (
	// ErrInvalidCredentials means the user service rejected the pair.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnavailable means the user service could not be reached.
	ErrUnavailable = errors.New("user service not reachable")
)

// VerifiedUser is the profile returned on a successful credential check.
type VerifiedUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg config.ServicesConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.UserServiceURL, "/"),
		httpClient: &http.Client{Timeout: cfg.ClientTimeout},
	}
}

// VerifyCredentials asks the user service whether username/password match.
func (c *Client) VerifyCredentials(ctx context.Context, username, password string) (VerifiedUser, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return VerifiedUser{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/users/verify-credentials",
		bytes.NewReader(payload),
	)
	if err != nil {
		return VerifiedUser{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VerifiedUser{}, ErrUnavailable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var user VerifiedUser
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return VerifiedUser{}, fmt.Errorf("decoding user service response: %w", err)
		}
		return user, nil
	case http.StatusUnauthorized:
		return VerifiedUser{}, ErrInvalidCredentials
	default:
		return VerifiedUser{}, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}
}
