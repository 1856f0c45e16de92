package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// Check reports whether one dependency can serve requests.
type Check func(ctx context.Context) error

const checkTimeout = time.Second

// Readiness runs every check and answers 503 unless all pass. No checks
// means ready.
func Readiness(checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for n := range checks {
		names = append(names, n)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks,omitempty"`
		}
		out := resp{Status: "ready"}
		ready := true
		if len(names) > 0 {
			out.Checks = make(map[string]string, len(names))
		}
		for _, n := range names {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err := checks[n](ctx)
			cancel()
			if err != nil {
				ready = false
				out.Checks[n] = err.Error()
				continue
			}
			out.Checks[n] = "ok"
		}
		if !ready {
			out.Status = "not_ready"
		}
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
