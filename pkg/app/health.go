package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"rentora/pkg/client"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type HealthHandler struct {
	client *client.Client
	log    *logger.Logger
}

func NewHealthHandler(c *client.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		client: c,
		log:    log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Database: "ok", Cache: "ok"}
	status := http.StatusOK

	if h.client.Mongo != nil {
		if err := h.client.Mongo.Ping(ctx, nil); err != nil {
			h.log.Error("Database health check failed", "error", err, "path", r.URL.Path)
			resp.Status = "unavailable"
			resp.Database = "error"
			status = http.StatusServiceUnavailable
		}
	}

	if h.client.Redis != nil {
		if err := h.client.Redis.Ping(ctx).Err(); err != nil {
			h.log.Error("Cache health check failed", "error", err, "path", r.URL.Path)
			resp.Status = "unavailable"
			resp.Cache = "error"
			status = http.StatusServiceUnavailable
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
