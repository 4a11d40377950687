package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/wonny/clientwatch/internal/api/handlers"
	"github.com/wonny/clientwatch/internal/metrics"
	"github.com/wonny/clientwatch/pkg/logger"
)

// Handlers groups the endpoint handlers
type Handlers struct {
	Alerts     *handlers.AlertHandler
	Compliance *handlers.ComplianceHandler
	Clients    *handlers.ClientHandler
	Reports    *handlers.ReportHandler
}

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// RouterOptions configures cross-cutting behaviour
type RouterOptions struct {
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer // nil disables /metrics
	RateLimit float64             // requests per second; <= 0 disables
	Burst     int
	Checks    map[string]HealthCheck
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(opts.Checks)).Methods("GET")

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Alert endpoints
	api.HandleFunc("/alerts", h.Alerts.List).Methods("GET")
	api.HandleFunc("/alerts/summary", h.Alerts.Summary).Methods("GET")
	api.HandleFunc("/alerts/briefing", h.Alerts.Briefing).Methods("GET")
	// ids may carry an encoded "/" from client-supplied keys
	api.HandleFunc("/alerts/{alertID:.+}/dismiss", h.Alerts.Dismiss).Methods("POST")
	api.HandleFunc("/alerts/{alertID:.+}/dismiss", h.Alerts.Restore).Methods("DELETE")

	// Compliance endpoints (report before the {clientID} pattern)
	api.HandleFunc("/compliance", h.Compliance.List).Methods("GET")
	api.HandleFunc("/compliance/report", h.Compliance.Report).Methods("GET")
	api.HandleFunc("/compliance/{clientID}", h.Compliance.Get).Methods("GET")
	api.HandleFunc("/portfolio", h.Compliance.Portfolio).Methods("GET")

	// Client endpoints
	api.HandleFunc("/clients/inactive", h.Clients.Inactive).Methods("GET")
	api.HandleFunc("/clients/{clientID}/inactive", h.Clients.Deactivate).Methods("POST")
	api.HandleFunc("/clients/{clientID}/inactive", h.Clients.Reactivate).Methods("DELETE")
	api.HandleFunc("/dismissals/stats", h.Clients.DismissalStats).Methods("GET")

	// Report endpoints
	api.HandleFunc("/reports/latest", h.Reports.Latest).Methods("GET")
	api.HandleFunc("/reports/history", h.Reports.History).Methods("GET")
	api.HandleFunc("/scans", h.Reports.Scan).Methods("POST")

	if opts.RateLimit > 0 {
		api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))))
	}

	// Apply middleware
	r.Use(loggingMiddleware(log, opts.Metrics))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status; any failing check yields 503
func healthCheckHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := map[string]interface{}{
			"status":  "ok",
			"service": "clientwatch-api",
			"checks":  results,
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the response code for logs and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests and records latency per route template
func loggingMiddleware(log *logger.Logger, mt *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			mt.ObserveHTTP(route, strconv.Itoa(rec.status), time.Since(start))

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware rejects requests beyond the shared token bucket
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
