package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"birthchart-server/internal/shared/response"
)

const pingTimeout = 2 * time.Second

// Pinger is implemented by the database pool and the Redis client.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Ephemeris string `json:"ephemeris"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

type HealthHandler struct {
	ephemeris string
	db        Pinger
	redis     Pinger
}

// NewHealthHandler takes nil pingers for disabled backends.
func NewHealthHandler(ephemeris string, db, redis Pinger) *HealthHandler {
	return &HealthHandler{ephemeris: ephemeris, db: db, redis: redis}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Ephemeris: h.ephemeris,
		Database:  backendStatus(ctx, logger, "database", h.db),
		Redis:     backendStatus(ctx, logger, "redis", h.redis),
	}
	if resp.Database == "disconnected" || resp.Redis == "disconnected" {
		resp.Status = "degraded"
	}

	response.Success(w, http.StatusOK, resp)
}

func backendStatus(ctx context.Context, logger *slog.Logger, name string, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.HealthCheck(ctx); err != nil {
		logger.Warn("Health check failed", "backend", name, "error", err)
		return "disconnected"
	}
	return "connected"
}
