package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/bigkaa/filedesk/internal/api/handlers"
	"github.com/bigkaa/filedesk/internal/api/openapi"
	"github.com/bigkaa/filedesk/internal/config"
	"github.com/bigkaa/filedesk/internal/database"
	"github.com/bigkaa/filedesk/internal/repository"
	"github.com/bigkaa/filedesk/internal/server"
	"github.com/bigkaa/filedesk/internal/service"
	"github.com/bigkaa/filedesk/internal/storage/filestore"
	"github.com/bigkaa/filedesk/internal/ui/flash"
	uihandlers "github.com/bigkaa/filedesk/internal/ui/handlers"
	"github.com/bigkaa/filedesk/internal/ui/i18n"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP-сервер",
	Long: `Загружает конфигурацию, применяет миграции, создаёт директорию загрузок
и запускает HTTP-сервер с graceful shutdown по SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// recordStore — хранилище записей, выбранное драйвером.
type recordStore struct {
	repo    repository.FileRepository
	checker *database.ReadinessChecker
	// dephealth создаётся только для PostgreSQL
	dephealth *service.DephealthService
	close     func()
}

func runServe(_ *cobra.Command, _ []string) error {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		return err
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("filedesk запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("db_driver", cfg.DBDriver),
	)

	if cfg.SecretKey == "" {
		logger.Warn("FD_SECRET_KEY не задан, flash-сообщения не переживают рестарт")
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		return err
	}

	// 4. Хранилище записей
	ctx := context.Background()
	records, err := openRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к хранилищу записей", slog.String("error", err.Error()))
		return err
	}
	defer records.close()

	// 5. Директория загрузок
	store, err := filestore.New(cfg.UploadDir)
	if err != nil {
		logger.Error("Ошибка подготовки директории загрузок",
			slog.String("dir", cfg.UploadDir),
			slog.String("error", err.Error()),
		)
		return err
	}
	logger.Info("Директория загрузок готова", slog.String("dir", store.Dir()))

	// 6. Сервисный слой
	filesSvc := service.NewFileService(
		records.repo,
		store,
		filestore.NewAllowList(cfg.AllowedExtensions),
		logger,
	)

	// 7. UI: переводы и flash-сообщения
	bundle, err := i18n.Load(cfg.DefaultLang, logger)
	if err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		return err
	}
	flashMgr, err := flash.NewManager(cfg.SecretKey, false)
	if err != nil {
		logger.Error("Ошибка создания flash-менеджера", slog.String("error", err.Error()))
		return err
	}

	// 8. OpenAPI-документ
	doc, err := openapi.Load()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI-документа", slog.String("error", err.Error()))
		return err
	}
	specHandler, err := openapi.NewHandler(doc)
	if err != nil {
		logger.Error("Ошибка сериализации OpenAPI-документа", slog.String("error", err.Error()))
		return err
	}

	// 9. topologymetrics — мониторинг PostgreSQL
	if records.dephealth != nil {
		if startErr := records.dephealth.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer records.dephealth.Stop()
		}
	}

	// 10. Создание и запуск HTTP-сервера
	router := server.NewRouter(logger, server.Components{
		Health:   handlers.NewHealthHandler(records.checker, store),
		APIFiles: handlers.NewFilesHandler(filesSvc, logger),
		OpenAPI:  specHandler,
		UI:       uihandlers.NewFilesHandler(filesSvc, flashMgr, cfg.MaxUploadSize, logger),
		I18n:     bundle,
	})

	srv := server.New(cfg, logger, router)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		return err
	}

	logger.Info("filedesk остановлен")
	return nil
}

// openRecordStore открывает хранилище записей по FD_DB_DRIVER.
func openRecordStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*recordStore, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
		pgDB := stdlib.OpenDBFromPool(pool)

		rs := &recordStore{
			repo:    repository.NewFileRepository(pool),
			checker: database.NewReadinessChecker(pool),
			close: func() {
				pgDB.Close()
				pool.Close()
			},
		}

		if os.Getenv("FD_DEPHEALTH_GROUP") == "" {
			logger.Warn("FD_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
				slog.String("default", cfg.DephealthGroup),
			)
		}
		dh, err := service.NewDephealthService(
			"filedesk",
			cfg.DephealthGroup,
			pgDB,
			cfg.DatabaseURL(),
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
		} else {
			rs.dephealth = dh
		}
		return rs, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &recordStore{
			repo:    repository.NewSQLiteFileRepository(db),
			checker: database.NewSQLiteReadinessChecker(db),
			close:   func() { _ = db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("неизвестный драйвер БД: %q", cfg.DBDriver)
}
