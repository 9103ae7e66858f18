// Пакет server — HTTP-сервер filedesk с graceful shutdown.
// Без TLS: TLS termination выполняет внешний прокси.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/filedesk/internal/api/handlers"
	"github.com/bigkaa/filedesk/internal/api/middleware"
	"github.com/bigkaa/filedesk/internal/config"
	uihandlers "github.com/bigkaa/filedesk/internal/ui/handlers"
	"github.com/bigkaa/filedesk/internal/ui/i18n"
	"github.com/bigkaa/filedesk/internal/ui/static"
)

// Components — обработчики, из которых собирается роутер.
type Components struct {
	Health   *handlers.HealthHandler
	APIFiles *handlers.FilesHandler
	OpenAPI  http.Handler
	UI       *uihandlers.FilesHandler
	I18n     *i18n.Bundle
}

// NewRouter собирает chi-роутер: служебные endpoints, JSON API, статика и UI.
func NewRouter(logger *slog.Logger, c Components) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Health и metrics
	router.Get("/health/live", c.Health.HealthLive)
	router.Get("/health/ready", c.Health.HealthReady)
	router.Get("/metrics", c.Health.GetMetrics)

	// JSON API (только чтение)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/files", c.APIFiles.ListFiles)
		r.Get("/files/{id}", c.APIFiles.GetFile)
		r.Method(http.MethodGet, "/openapi.json", c.OpenAPI)
	})

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	// UI: язык запроса определяется до рендеринга любой страницы, включая 404
	withLang := c.I18n.Middleware()
	router.Group(func(r chi.Router) {
		r.Use(withLang)
		c.UI.Register(r)
	})
	router.NotFound(withLang(http.HandlerFunc(c.UI.NotFound)).ServeHTTP)

	return router
}

// Server — HTTP-сервер filedesk.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер поверх готового роутера.
func New(cfg *config.Config, logger *slog.Logger, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Загрузка больших файлов по медленному каналу
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve запускает сервер и останавливает его при отмене ctx.
func (s *Server) Serve(ctx context.Context) error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Получен сигнал завершения")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
