package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
)

// Version is reported by /version on every binary.
const Version = "1.0.0"

type pinger interface {
	Ping(ctx context.Context) error
}

type healthReport struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// HealthHandler answers 503 while the database cannot be pinged. A nil
// pinger reports the process alone.
func HealthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeJSON(w, http.StatusOK, healthReport{Status: "ok"})
			return
		}
		if err := db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthReport{Status: "degraded", Database: "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, healthReport{Status: "ok", Database: "ok"})
	}
}

func VersionHandler(name string) http.HandlerFunc {
	goVersion := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"name": name, "version": Version, "go": goVersion})
	}
}
