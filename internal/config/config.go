// Пакет config — загрузка и валидация конфигурации filedesk
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Поддерживаемые драйверы хранилища записей.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultAllowedExtensions — расширения, разрешённые к загрузке по умолчанию.
const DefaultAllowedExtensions = "txt,pdf,png,jpg,jpeg,gif"

// Config содержит все параметры конфигурации filedesk.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Файлы ---

	// Абсолютный путь к директории загрузок
	UploadDir string
	// Разрешённые расширения (нижний регистр, без точки)
	AllowedExtensions []string
	// Максимальный размер multipart-запроса в байтах
	MaxUploadSize int64

	// --- UI ---

	// Ключ шифрования flash-cookie. Пустой — случайный ключ на процесс.
	SecretKey string
	// Язык интерфейса по умолчанию (en, ru, ar)
	DefaultLang string

	// --- Хранилище записей ---

	// Драйвер: sqlite или postgres
	DBDriver string
	// Путь к файлу SQLite
	SQLitePath string
	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- topologymetrics ---

	// Группа зависимостей в метриках
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FD_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("FD_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FD_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("FD_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// FD_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("FD_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("FD_LOG_LEVEL: %w", err)
	}

	// FD_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FD_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FD_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Файлы ---

	// FD_UPLOAD_DIR — директория загрузок (по умолчанию ./uploads)
	cfg.UploadDir, err = filepath.Abs(getEnvDefault("FD_UPLOAD_DIR", "uploads"))
	if err != nil {
		return nil, fmt.Errorf("FD_UPLOAD_DIR: %w", err)
	}

	// FD_ALLOWED_EXTENSIONS — список расширений через запятую
	cfg.AllowedExtensions = parseExtensions(getEnvDefault("FD_ALLOWED_EXTENSIONS", DefaultAllowedExtensions))
	if len(cfg.AllowedExtensions) == 0 {
		return nil, fmt.Errorf("FD_ALLOWED_EXTENSIONS: список расширений пуст")
	}

	// FD_MAX_UPLOAD_SIZE — лимит размера запроса (по умолчанию 32 MiB)
	cfg.MaxUploadSize, err = getEnvInt64("FD_MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("FD_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("FD_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	// --- UI ---

	cfg.SecretKey = os.Getenv("FD_SECRET_KEY")

	// FD_DEFAULT_LANG — язык по умолчанию (en)
	cfg.DefaultLang = getEnvDefault("FD_DEFAULT_LANG", "en")
	switch cfg.DefaultLang {
	case "en", "ru", "ar":
	default:
		return nil, fmt.Errorf("FD_DEFAULT_LANG: недопустимое значение %q, допустимые: en, ru, ar", cfg.DefaultLang)
	}

	// --- Хранилище записей ---

	// FD_DB_DRIVER — sqlite (по умолчанию) или postgres
	cfg.DBDriver = getEnvDefault("FD_DB_DRIVER", DriverSQLite)
	switch cfg.DBDriver {
	case DriverSQLite:
		// FD_SQLITE_PATH — файл базы (по умолчанию files.db)
		cfg.SQLitePath, err = filepath.Abs(getEnvDefault("FD_SQLITE_PATH", "files.db"))
		if err != nil {
			return nil, fmt.Errorf("FD_SQLITE_PATH: %w", err)
		}
	case DriverPostgres:
		if err := loadPostgres(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("FD_DB_DRIVER: недопустимое значение %q, допустимые: sqlite, postgres", cfg.DBDriver)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("FD_DEPHEALTH_GROUP", "filedesk")

	// FD_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("FD_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FD_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// FD_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("FD_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FD_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// loadPostgres загружает параметры подключения к PostgreSQL.
// Хост, имя базы, пользователь и пароль обязательны.
func loadPostgres(cfg *Config) error {
	var err error

	cfg.DBHost, err = getEnvRequired("FD_DB_HOST")
	if err != nil {
		return err
	}

	cfg.DBPort, err = getEnvInt("FD_DB_PORT", 5432)
	if err != nil {
		return fmt.Errorf("FD_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("FD_DB_NAME")
	if err != nil {
		return err
	}

	cfg.DBUser, err = getEnvRequired("FD_DB_USER")
	if err != nil {
		return err
	}

	cfg.DBPassword, err = getEnvRequired("FD_DB_PASSWORD")
	if err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("FD_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("FD_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в URL-форме.
// Учётные данные экранируются, поэтому пароль может содержать @, : и /.
func (c *Config) DatabaseDSN() string {
	return c.postgresURL("postgres", true)
}

// DatabaseURL возвращает URL PostgreSQL без учётных данных.
// Используется только для лейблов topologymetrics.
func (c *Config) DatabaseURL() string {
	return c.postgresURL("postgres", false)
}

// MigrateURL возвращает URL PostgreSQL в формате драйвера pgx5 golang-migrate.
// SQLite мигрирует через уже открытый *sql.DB, URL для него не нужен.
func (c *Config) MigrateURL() string {
	return c.postgresURL("pgx5", true)
}

func (c *Config) postgresURL(scheme string, withCredentials bool) string {
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	if withCredentials {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
		u.RawQuery = url.Values{"sslmode": {c.DBSSLMode}}.Encode()
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseExtensions разбирает список расширений через запятую.
// Приводит к нижнему регистру, убирает ведущую точку и пустые элементы.
func parseExtensions(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p), "."))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
