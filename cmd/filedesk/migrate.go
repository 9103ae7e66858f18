package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bigkaa/filedesk/internal/config"
	"github.com/bigkaa/filedesk/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции БД и выйти",
	Long: `Применяет встроенные миграции к базе, выбранной FD_DB_DRIVER
(sqlite или postgres). Команда serve выполняет то же самое при старте.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		return err
	}
	logger := config.SetupLogger(cfg)

	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		return fmt.Errorf("миграции: %w", err)
	}
	return nil
}
