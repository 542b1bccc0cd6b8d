package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/titanium/backend/internal/cache"
	"github.com/titanium/backend/internal/services"
	"github.com/titanium/backend/internal/store"
	"github.com/titanium/backend/types"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// reservedUsernames are names an account can never claim, regardless of case.
var reservedUsernames = map[string]struct{}{
	"admin": {}, "root": {}, "system": {}, "api": {}, "auth": {}, "user": {},
	"blog": {}, "www": {}, "mail": {}, "ftp": {}, "localhost": {},
}

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// UserHandler serves the user service endpoints: registration, profile
// lookup and the credential check the auth service calls.
type UserHandler struct {
	users *services.UserService
	cache *cache.Cache
}

func NewUserHandler(users *services.UserService, c *cache.Cache) *UserHandler {
	return &UserHandler{users: users, cache: c}
}

// UserProfile is the public view of a user. No hash, no timestamps.
type UserProfile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func profileOf(user types.User) UserProfile {
	return UserProfile{ID: user.ID, Username: user.Username, Email: user.Email}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req registerRequest) validate() string {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return "username must be between 3 and 50 characters"
	}
	if !usernamePattern.MatchString(req.Username) {
		return "username must contain only alphanumeric characters and underscores"
	}
	if _, reserved := reservedUsernames[strings.ToLower(req.Username)]; reserved {
		return "this username is reserved"
	}
	if !strings.Contains(req.Email, "@") {
		return "invalid email address"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if !strings.ContainsFunc(req.Password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return "password must contain at least one uppercase letter"
	}
	if !strings.ContainsFunc(req.Password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return "password must contain at least one lowercase letter"
	}
	if !strings.ContainsFunc(req.Password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return "password must contain at least one digit"
	}
	if !strings.ContainsAny(req.Password, passwordSpecials) {
		return "password must contain at least one special character"
	}
	return ""
}

// Register creates a new account. Duplicate usernames come back as 400; the
// only thing that detects the duplicate is the database constraint, so the
// answer stays correct under concurrent registrations.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, profileOf(user))
}

// GetUser returns a public profile by username, cached for repeat lookups.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var profile UserProfile
	if h.cache.GetUser(r.Context(), username, &profile) {
		writeJSON(w, http.StatusOK, profile)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	profile = profileOf(user)
	h.cache.SetUser(r.Context(), username, profile)
	writeJSON(w, http.StatusOK, profile)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifyCredentials checks a username/password pair for the auth service.
// Every failure mode is the same 401.
func (h *UserHandler) VerifyCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to verify credentials")
		return
	}

	writeJSON(w, http.StatusOK, profileOf(user))
}
