// metrics.go — Prometheus HTTP метрики filedesk:
// fd_http_requests_total, fd_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fd_http_requests_total",
			Help: "Общее количество HTTP-запросов к filedesk",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fd_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к filedesk в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// Маршруты с идентификатором записи в последнем сегменте.
var idPrefixes = []string{"/edit/", "/delete/", "/download/", "/api/v1/files/"}

// normalizePath приводит путь к шаблону маршрута.
// /edit/42 → /edit/{id}, /static/css/app.css → /static/*.
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	switch path {
	case "/", "/admin", "/health/live", "/health/ready", "/metrics",
		"/api/v1/files", "/api/v1/openapi.json":
		return path
	}

	for _, prefix := range idPrefixes {
		if rest, ok := strings.CutPrefix(path, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			return prefix + "{id}"
		}
	}

	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}

	return "other"
}
