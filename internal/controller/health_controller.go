package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthController reports service liveness and dependency status.
type HealthController struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

func NewHealthController(pool *pgxpool.Pool, cache *redis.Client) *HealthController {
	return &HealthController{pool: pool, cache: cache}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check handles GET /health. Degraded dependencies flip the status but the
// endpoint itself stays 200 unless the database is unreachable.
func (h *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			resp.Checks["postgres"] = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["postgres"] = "ok"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx).Err(); err != nil {
			resp.Checks["redis"] = "unreachable"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		} else {
			resp.Checks["redis"] = "ok"
		}
	}

	writeJSON(w, status, resp)
}
