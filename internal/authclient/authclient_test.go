package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titanium/backend/config"
)

func newClientFor(url string) *Client {
	return New(config.ServicesConfig{
		AuthServiceURL: url,
		ClientTimeout:  2 * time.Second,
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify", r.URL.Path)
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"username":"alice","user_id":1}}`))
	}))
	defer srv.Close()

	username, err := newClientFor(srv.URL).Authenticate(context.Background(), "Bearer good-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	c := newClientFor(srv.URL)

	for _, header := range []string{
		"",
		"Bearer",
		"Bearer ",
		"bearer token",
		"Basic dXNlcjpwYXNz",
		"Bearer one two",
	} {
		_, err := c.Authenticate(context.Background(), header)
		assert.ErrorIs(t, err, ErrHeaderMalformed, "header %q", header)
	}
	// malformed headers never reach the auth service
	assert.False(t, called)
}

func TestAuthenticateRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"failed","message":"Token has expired"}`))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Authenticate(context.Background(), "Bearer stale")
	assert.ErrorIs(t, err, ErrTokenRejected)
}

func TestAuthenticateEmptyUsernameRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"user_id":1}}`))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Authenticate(context.Background(), "Bearer odd")
	assert.ErrorIs(t, err, ErrTokenRejected)
}

func TestAuthenticateUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newClientFor(srv.URL).Authenticate(context.Background(), "Bearer token")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
