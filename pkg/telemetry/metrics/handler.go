package metrics

import (
	"encoding/json"
	"net/http"
)

// Handler returns an HTTP handler for the metrics endpoint.
//
// The format query parameter selects the output:
//
//	GET /metrics?format=prometheus   text exposition format (default)
//	GET /metrics?format=json         JSON snapshot with percentiles
func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		switch req.URL.Query().Get("format") {
		case "json":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if req.Method != http.MethodHead {
				_ = json.NewEncoder(w).Encode(r.JSONSnapshot())
			}
		case "", "prometheus":
			w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			if req.Method != http.MethodHead {
				_, _ = w.Write([]byte(r.PrometheusText()))
			}
		default:
			http.Error(w, "unsupported format", http.StatusBadRequest)
		}
	}
}
