package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/designer/internal/auth/store"
	"github.com/aussiebroadwan/designer/pkg/authsdk"
	"github.com/aussiebroadwan/designer/pkg/httpx"
	"github.com/aussiebroadwan/designer/pkg/slogx"
)

// ReadyzHandler reports 503 when the record store cannot be locked or one
// of its files does not decode. The cause is logged, never returned.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Store: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Error("readiness check failed", "err", err)
			checks.Store = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
