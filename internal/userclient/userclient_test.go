package userclient

import (
	"context"
	"encoding/json"
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
		UserServiceURL: url,
		ClientTimeout:  2 * time.Second,
	})
}

func TestVerifyCredentialsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/verify-credentials", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "S3cret!pw", body["password"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"username":"alice","email":"alice@example.com"}`))
	}))
	defer srv.Close()

	user, err := newClientFor(srv.URL).VerifyCredentials(context.Background(), "alice", "S3cret!pw")
	require.NoError(t, err)
	assert.Equal(t, 42, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestVerifyCredentialsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized","message":"Invalid credentials","status_code":401}`))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).VerifyCredentials(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyCredentialsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newClientFor(srv.URL).VerifyCredentials(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVerifyCredentialsUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).VerifyCredentials(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
