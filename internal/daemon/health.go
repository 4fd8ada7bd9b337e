package daemon

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Scans         int64  `json:"scans"`
	LastError     string `json:"last_error,omitempty"`
}

// Health reports the daemon's current health.
func (d *Daemon) Health() HealthStatus {
	status := HealthStatus{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(d.startTime).Seconds()),
		Scans:         d.scanCount.Load(),
	}
	if err, ok := d.lastError.Load().(string); ok && err != "" {
		status.Status = "degraded"
		status.LastError = err
	}
	return status
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d.Health())
}

func handleOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
