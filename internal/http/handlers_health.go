package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady reports whether templates are loaded and the session store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.sessions.Ping(ctx); err != nil {
		checks["session_store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["session_store"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	security := s.securityDetector.GetMetrics()
	rateLimit := s.rateLimiter.GetMetrics()
	traced := s.traceMiddleware.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "counter", "Total number of HTTP requests", traced.TotalRequests)
	metric("http_request_duration_avg_us", "gauge", "Average request duration in microseconds", traced.AverageResponseTime)
	metric("expenses_created_total", "counter", "Expenses and recurring templates created", s.appMetrics.expensesCreated.Load())
	metric("generations_total", "counter", "Successful recurring generations", s.appMetrics.generations.Load())
	metric("stale_responses_discarded_total", "counter", "Responses discarded because a newer request superseded them", s.appMetrics.staleDiscarded.Load())
	metric("backend_errors_total", "counter", "Failed backend calls", s.appMetrics.backendErrors.Load())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimit.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimit.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", security.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}
