package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titanium/backend/config"
	"github.com/titanium/backend/internal/cache"
	"github.com/titanium/backend/internal/db"
	"github.com/titanium/backend/internal/password"
	"github.com/titanium/backend/internal/services"
	"github.com/titanium/backend/internal/store"
)

func newUserRouter(t *testing.T) chi.Router {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, db.InitSQLiteSchema(context.Background(), conn))
	t.Cleanup(func() { conn.Close() })

	hasher, err := password.NewHasher(config.PasswordConfig{TimeCost: 1, MemoryKB: 8 * 1024, Parallelism: 1})
	require.NoError(t, err)
	userService, err := services.NewUserService(store.NewSQLiteUserRepository(conn), hasher)
	require.NoError(t, err)

	handler := NewUserHandler(userService, cache.New(nil))
	r := chi.NewRouter()
	r.Post("/users", handler.Register)
	r.Get("/users/{username}", handler.GetUser)
	r.Post("/users/verify-credentials", handler.VerifyCredentials)
	return r
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getPath(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	router := newUserRouter(t)

	rec := postJSON(router, "/users", `{"username":"alice","email":"alice@example.com","password":"S3cret!pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "argon2")
}

func TestRegisterEndpointValidation(t *testing.T) {
	router := newUserRouter(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"username":`, ""},
		{"short username", `{"username":"ab","email":"a@b.c","password":"S3cret!pw"}`, "between 3 and 50"},
		{"bad characters", `{"username":"a b c","email":"a@b.c","password":"S3cret!pw"}`, "alphanumeric"},
		{"reserved username", `{"username":"admin","email":"a@b.c","password":"S3cret!pw"}`, "reserved"},
		{"reserved despite case", `{"username":"Root","email":"a@b.c","password":"S3cret!pw"}`, "reserved"},
		{"bad email", `{"username":"alice","email":"nope","password":"S3cret!pw"}`, "email"},
		{"short password", `{"username":"alice","email":"a@b.c","password":"short"}`, "at least 8"},
		{"no uppercase", `{"username":"alice","email":"a@b.c","password":"s3cret!pw"}`, "uppercase"},
		{"no lowercase", `{"username":"alice","email":"a@b.c","password":"S3CRET!PW"}`, "lowercase"},
		{"no digit", `{"username":"alice","email":"a@b.c","password":"Secrets!pw"}`, "digit"},
		{"no special character", `{"username":"alice","email":"a@b.c","password":"S3cretXpw"}`, "special"},
	}
	for _, tc := range cases {
		rec := postJSON(router, "/users", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
		if tc.want != "" {
			assert.Contains(t, rec.Body.String(), tc.want, tc.name)
		}
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	router := newUserRouter(t)

	rec := postJSON(router, "/users", `{"username":"alice","email":"alice@example.com","password":"S3cret!pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(router, "/users", `{"username":"alice","email":"other@example.com","password":"Another!1pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists")
}

func TestGetUserEndpoint(t *testing.T) {
	router := newUserRouter(t)

	rec := postJSON(router, "/users", `{"username":"alice","email":"alice@example.com","password":"S3cret!pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = getPath(router, "/users/alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"alice@example.com"`)

	rec = getPath(router, "/users/nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestVerifyCredentialsEndpoint(t *testing.T) {
	router := newUserRouter(t)

	rec := postJSON(router, "/users", `{"username":"alice","email":"alice@example.com","password":"S3cret!pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(router, "/users/verify-credentials", `{"username":"alice","password":"S3cret!pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	// wrong password and unknown user are the same 401
	wrongPw := postJSON(router, "/users/verify-credentials", `{"username":"alice","password":"wrong"}`)
	unknown := postJSON(router, "/users/verify-credentials", `{"username":"nobody","password":"S3cret!pw"}`)
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())

	rec = postJSON(router, "/users/verify-credentials", `{"username":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
