package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/admin", "/admin"},
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/metrics", "/metrics"},
		{"/api/v1/files", "/api/v1/files"},
		{"/api/v1/openapi.json", "/api/v1/openapi.json"},
		{"/edit/1", "/edit/{id}"},
		{"/delete/42", "/delete/{id}"},
		{"/download/999999", "/download/{id}"},
		{"/api/v1/files/7", "/api/v1/files/{id}"},
		{"/edit/", "other"},
		{"/edit/1/extra", "other"},
		{"/static/css/app.css", "/static/*"},
		{"/wp-login.php", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsMiddleware_PassesStatus проверяет, что обёртка не меняет ответ.
func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/edit/3", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("статус = %d, ожидался %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "tea" {
		t.Errorf("тело = %q", rec.Body.String())
	}
}
