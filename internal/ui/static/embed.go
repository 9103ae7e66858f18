// Пакет static — встроенные статические ресурсы UI.
// Файлы встраиваются в бинарник через //go:embed и раздаются на /static/*.
package static

import (
	"embed"
	"net/http"
)

//go:embed css/*.css
var content embed.FS

// FileSystem возвращает http.FileSystem для обработки запросов к /static/*.
// Файлы доступны по путям вида /static/css/app.css.
func FileSystem() http.FileSystem {
	return http.FS(content)
}
