// middleware.go — определение языка пользователя.
package i18n

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LangCookieName — имя cookie для хранения выбранного языка.
const LangCookieName = "lang"

// Middleware определяет язык запроса и помещает его вместе с Bundle в контекст.
// Приоритет: cookie "lang" → Accept-Language → язык по умолчанию.
func (b *Bundle) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLang(WithBundle(r.Context(), b), b.detectLanguage(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (b *Bundle) detectLanguage(r *http.Request) string {
	if cookie, err := r.Cookie(LangCookieName); err == nil && Supported(cookie.Value) {
		return cookie.Value
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if lang, ok := MatchLanguage(accept); ok {
			return lang
		}
	}

	return b.defaultLang
}

// HandleSetLanguage обрабатывает POST /lang.
// Устанавливает cookie "lang" на 1 год и перенаправляет на путь из Referer (или /).
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !Supported(lang) {
		lang = Languages[0]
	}

	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})

	// Только путь из Referer: редирект на чужой хост не допускается
	target := "/"
	if u, err := url.Parse(r.Header.Get("Referer")); err == nil && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(u.Path, "//") {
		target = u.Path
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
