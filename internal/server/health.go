package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

// ListenerStatus reports whether change notifications are currently being received.
type ListenerStatus interface {
	Connected() bool
}

type HealthChecker struct {
	db       DBPinger
	listener ListenerStatus
	log      *slog.Logger
}

func NewHealthChecker(db DBPinger, listener ListenerStatus, log *slog.Logger) *HealthChecker {
	return &HealthChecker{
		db:       db,
		listener: listener,
		log:      log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.db.Ping(req.Context()); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: DB ping", "error", err)
	} else {
		status["database"] = "ok"
	}

	if h.listener.Connected() {
		status["listener"] = "ok"
	} else {
		status["listener"] = "reconnecting"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: change listener is not connected")
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
