// Пакет i18n — интернационализация UI.
// Bundle.T(ctx, key) возвращает перевод для языка из контекста запроса.
// Поддерживаемые языки: English (en), Русский (ru), العربية (ar).
// Язык определяется middleware: cookie "lang" → Accept-Language → язык по умолчанию.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// Languages — коды поддерживаемых языков. Первый — запасной для переводов.
var Languages = []string{"en", "ru", "ar"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Russian,
	language.Arabic,
})

type contextKey string

const (
	contextKeyLang   contextKey = "i18n_lang"
	contextKeyBundle contextKey = "i18n_bundle"
)

// Bundle — хранилище переводов для всех языков.
// Загружается один раз при старте приложения.
type Bundle struct {
	mu          sync.RWMutex
	catalogs    map[string]map[string]string // lang → key → translation
	defaultLang string
	logger      *slog.Logger
}

// NewBundle создаёт пустой Bundle.
// defaultLang используется, если язык запроса определить не удалось.
func NewBundle(defaultLang string, logger *slog.Logger) *Bundle {
	if !Supported(defaultLang) {
		defaultLang = Languages[0]
	}
	return &Bundle{
		catalogs:    make(map[string]map[string]string),
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// DefaultLang возвращает язык по умолчанию.
func (b *Bundle) DefaultLang() string {
	return b.defaultLang
}

// LoadMessages загружает JSON-каталог переводов для указанного языка.
// JSON формат: {"key": "translation", ...} (плоский).
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = messages

	b.logger.Debug("i18n каталог загружен",
		slog.String("lang", lang),
		slog.Int("keys", len(messages)),
	)
	return nil
}

// Translate возвращает перевод по ключу для указанного языка.
// Порядок поиска: язык → английский → сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[Languages[0]][key]; ok {
		return msg
	}
	return key
}

// T возвращает перевод по ключу, используя язык из контекста.
func (b *Bundle) T(ctx context.Context, key string) string {
	return b.Translate(b.Lang(ctx), key)
}

// Tf — T с подстановкой аргументов (fmt.Sprintf).
func (b *Bundle) Tf(ctx context.Context, key string, args ...any) string {
	return formatFunc(b.T(ctx, key), args...)
}

// formatFunc — fmt.Sprintf через переменную: формат-строки приходят
// из JSON-каталогов, go vet printf-проверка к ним неприменима.
var formatFunc = fmt.Sprintf

// Lang извлекает язык из контекста (язык по умолчанию, если не задан).
func (b *Bundle) Lang(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return b.defaultLang
}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// WithBundle помещает Bundle в контекст.
func WithBundle(ctx context.Context, b *Bundle) context.Context {
	return context.WithValue(ctx, contextKeyBundle, b)
}

// FromContext извлекает Bundle из контекста (nil, если middleware не применялся).
func FromContext(ctx context.Context) *Bundle {
	b, _ := ctx.Value(contextKeyBundle).(*Bundle)
	return b
}

// --- Функции для использования в компонентах страниц ---

// T возвращает перевод по ключу через Bundle из контекста.
// Без Bundle возвращает сам ключ.
func T(ctx context.Context, key string) string {
	if b := FromContext(ctx); b != nil {
		return b.T(ctx, key)
	}
	return key
}

// Tf — T с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	return formatFunc(T(ctx, key), args...)
}

// Lang возвращает язык запроса: из контекста, иначе язык по умолчанию Bundle, иначе en.
func Lang(ctx context.Context) string {
	if b := FromContext(ctx); b != nil {
		return b.Lang(ctx)
	}
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return Languages[0]
}

// Supported проверяет, поддерживается ли язык.
func Supported(lang string) bool {
	return slices.Contains(Languages, lang)
}

// Dir возвращает направление письма для атрибута dir.
func Dir(lang string) string {
	if lang == "ar" {
		return "rtl"
	}
	return "ltr"
}

// MatchLanguage определяет лучший язык из заголовка Accept-Language.
// ok=false, если ни один поддерживаемый язык не подошёл.
func MatchLanguage(acceptLanguage string) (lang string, ok bool) {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return Languages[idx], true
}
