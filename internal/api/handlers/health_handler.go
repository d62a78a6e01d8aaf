package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/pkg/logger"
)

// PingFunc checks a dependency the server needs to serve traffic.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ready PingFunc
}

func NewHealthHandler(ready PingFunc) *HealthHandler { return &HealthHandler{ready: ready} }

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: map[string]string{"status": "ok"}})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logger.L().Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, types.APIResponse{Status: types.StatusError, Message: "database unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: map[string]string{"status": "ready"}})
}
