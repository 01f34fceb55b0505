package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/zlin-dev/userhub/internal/api/shared"
)

// HealthHandler serves liveness probes. The detailed variant adds process
// and runtime information for operators.
type HealthHandler struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler stamped with the build version.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startedAt: time.Now().UTC(),
	}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) error {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
	return nil
}

// Detailed handles GET /health/detailed with uptime and runtime stats.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"runtime": map[string]any{
			"go_version":   runtime.Version(),
			"goroutines":   runtime.NumGoroutine(),
			"heap_alloc":   mem.HeapAlloc,
			"total_alloc":  mem.TotalAlloc,
			"num_gc":       mem.NumGC,
			"num_cpu":      runtime.NumCPU(),
			"os":           runtime.GOOS,
			"architecture": runtime.GOARCH,
		},
	})
	return nil
}
