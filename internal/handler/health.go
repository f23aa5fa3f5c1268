package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/easylife-c/APHAv.2/internal/logger"
)

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HandleHealthz provides a basic liveness check
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// HandleReadyz provides a readiness check that validates the data directory
// is writable. The ledgers persist by whole-file rewrite, so a read-only
// data dir means every application would fail.
func HandleReadyz(dataDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		probe, err := os.CreateTemp(dataDir, ".readyz-*")
		if err != nil {
			logger.FromContext(r.Context()).Error("Readiness check failed", "error", err, "data_dir", dataDir)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unavailable",
				Message: "data directory is not writable",
			})
			return
		}
		name := probe.Name()
		probe.Close()
		os.Remove(filepath.Clean(name))

		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// VersionInfo contains version and build information
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuildTime string `json:"build_time,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// Build-time variables (injected via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unset"
)

// HandleVersion returns version information about the running build
func HandleVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, VersionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			BuildTime: BuildTime,
			GitCommit: GitCommit,
		})
	}
}
