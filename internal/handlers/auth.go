package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/titanium/backend/internal/token"
	"github.com/titanium/backend/internal/userclient"
)

// Envelope statuses used by the auth endpoints. Clients branch on the
// status field, not just the HTTP code.
const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// AuthHandler issues and verifies tokens. It holds no user data; every
// credential check is delegated to the user service.
type AuthHandler struct {
	tokens *token.Service
	users  *userclient.Client
}

func NewAuthHandler(tokens *token.Service, users *userclient.Client) *AuthHandler {
	return &AuthHandler{tokens: tokens, users: users}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// Login checks credentials against the user service and returns a signed
// token. Unknown user and wrong password share one failed envelope; an
// unreachable user service is the caller's cue to retry and gets a 502
// instead.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.VerifyCredentials(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, userclient.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, loginResponse{
			Status:  statusFailed,
			Message: "Invalid username or password",
		})
		return
	default:
		log.Printf("handlers: credential check for %q did not complete: %v", req.Username, err)
		writeJSON(w, http.StatusBadGateway, loginResponse{
			Status:  statusFailed,
			Message: "authentication backend unavailable",
		})
		return
	}

	signed, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Printf("handlers: token issue failed for %q: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Status: statusSuccess, Token: signed})
}

type verifyResponse struct {
	Status  string         `json:"status"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Verify validates the bearer token in the Authorization header. A
// malformed header is the caller's bug and gets a 400; a well-formed header
// with a bad token gets a 401 with one of exactly two messages.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeError(w, http.StatusBadRequest, "Authorization header missing or invalid")
		return
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		writeError(w, http.StatusBadRequest, "Invalid Authorization header format")
		return
	}

	claims, err := h.tokens.Verify(parts[1])
	if err != nil {
		message := "Invalid token"
		if errors.Is(err, token.ErrTokenExpired) {
			message = "Token has expired"
		}
		writeJSON(w, http.StatusUnauthorized, verifyResponse{Status: statusFailed, Message: message})
		return
	}

	data := map[string]any{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"exp":      claims.ExpiresAt.Unix(),
		"jti":      claims.ID,
		"iss":      claims.Issuer,
	}
	// exp is mandatory at verification; iat is not, so a valid token may
	// arrive without one
	if claims.IssuedAt != nil {
		data["iat"] = claims.IssuedAt.Unix()
	}
	writeJSON(w, http.StatusOK, verifyResponse{Status: statusSuccess, Data: data})
}
