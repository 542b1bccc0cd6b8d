package handlers

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/titanium/backend/internal/services"
)

// HealthHandler serves liveness and dashboard stats for one service.
type HealthHandler struct {
	service string
	db      *sql.DB
	rdb     *redis.Client
	posts   *services.PostService
}

func NewHealthHandler(service string, db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{service: service, db: db, rdb: rdb}
}

// WithPosts adds a post count to the stats payload.
func (h *HealthHandler) WithPosts(posts *services.PostService) *HealthHandler {
	h.posts = posts
	return h
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": h.service})
}

// Stats reports live dependency health for the dashboard. Degraded, not
// down: a failing dependency changes the payload, never the status code.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats := map[string]any{"service_status": "online"}
	degraded := false

	if h.db != nil {
		status := "healthy"
		if err := h.db.PingContext(ctx); err != nil {
			status = "unhealthy"
			degraded = true
		}
		stats["database"] = map[string]string{"status": status}
	}
	if h.rdb != nil {
		status := "healthy"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			status = "unhealthy"
			degraded = true
		}
		stats["cache"] = map[string]string{"status": status}
	}
	if h.posts != nil {
		stats["post_count"] = h.postCount(ctx)
	}
	if degraded {
		stats["service_status"] = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{h.service: stats})
}

func (h *HealthHandler) postCount(ctx context.Context) int {
	count, err := h.posts.CountPosts(ctx)
	if err != nil {
		log.Printf("handlers: post count for stats failed: %v", err)
		return 0
	}
	return count
}
