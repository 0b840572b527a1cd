package handlers

import (
	"net/http"

	"copier-backend/internal/cache"
	"copier-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthHandler struct {
	db *pgxpool.Pool
}

func NewHealthHandler(db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports database and cache reachability. The cache being down is
// degraded, not unhealthy.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbStatus := "ok"
	if err := h.db.Ping(r.Context()); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "ok"
	if client := cache.GetClient(); client == nil {
		cacheStatus = "disabled"
	} else if err := client.Ping(r.Context()).Err(); err != nil {
		cacheStatus = "down"
	}

	utils.JSON(w, status, map[string]string{
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
