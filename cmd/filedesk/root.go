package main

import (
	"github.com/spf13/cobra"
)

// rootCmd без подкоманды запускает сервер.
var rootCmd = &cobra.Command{
	Use:   "filedesk",
	Short: "filedesk — загрузка, просмотр и управление файлами через веб-интерфейс",
	Long: `filedesk хранит загруженные файлы в плоской директории и ведёт их реестр
в SQLite или PostgreSQL. Настройка через переменные окружения FD_*.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}
