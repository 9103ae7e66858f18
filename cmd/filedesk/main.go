// Точка входа filedesk — веб-приложение загрузки и управления файлами.
// Команды: serve (по умолчанию), migrate, version.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
