package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/titanium/backend/internal/authclient"
	"github.com/titanium/backend/internal/services"
	"github.com/titanium/backend/internal/store"
	"github.com/titanium/backend/types"
)

// PostHandler serves the blog endpoints. Reads are public; mutations require
// a token verified remotely by the auth service.
type PostHandler struct {
	posts *services.PostService
	auth  *authclient.Client
}

func NewPostHandler(posts *services.PostService, auth *authclient.Client) *PostHandler {
	return &PostHandler{posts: posts, auth: auth}
}

// requireUser resolves the request's Authorization header to a username.
// On failure it writes the response and returns false: 401 when the header
// or token is bad, 502 when the auth service cannot be consulted at all.
func (h *PostHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, err := h.auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, authclient.ErrHeaderMalformed):
			writeError(w, http.StatusUnauthorized, "Authorization header missing or invalid")
		case errors.Is(err, authclient.ErrUpstreamUnavailable):
			writeError(w, http.StatusBadGateway, "Auth service not reachable")
		default:
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		}
		return "", false
	}
	return username, true
}

// ListPosts returns a page of post summaries, newest first.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0, 0, 1<<30)
	limit := queryInt(r, "limit", 20, 1, 100)
	category := r.URL.Query().Get("category")

	summaries, err := h.posts.ListPosts(r.Context(), offset, limit, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

type createPostRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	CategoryName string `json:"category_name"`
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	if req.Title == "" || req.Content == "" || req.CategoryName == "" {
		writeError(w, http.StatusBadRequest, "title, content and category_name are required")
		return
	}

	post, err := h.posts.CreatePost(r.Context(), req.Title, req.Content, username, req.CategoryName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost applies a partial update. The author check happens inside the
// storage statement; a missing post and someone else's post are both 403.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var patch types.PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), id, username, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoChanges):
			writeJSON(w, http.StatusOK, map[string]string{"message": "No changes"})
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusForbidden, "Forbidden: not the author")
		default:
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.posts.DeletePost(r.Context(), id, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusForbidden, "Forbidden: not the author")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.posts.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
