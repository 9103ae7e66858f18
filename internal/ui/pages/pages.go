// Пакет pages — HTML-страницы UI. Разметка описана в *.templ,
// *_templ.go генерируются командой templ generate.
// Тексты берутся из i18n по языку запроса.
package pages

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"strconv"
	"strings"

	"github.com/bigkaa/filedesk/internal/ui/flash"
)

// FileItem — строка таблицы файлов.
type FileItem struct {
	ID       int64
	Filename string
}

// IndexData — данные публичной страницы списка.
type IndexData struct {
	Files   []FileItem
	Flashes []flash.Message
}

// AdminData — данные страницы управления.
type AdminData struct {
	Files []FileItem
	// Allowed — разрешённые расширения для подсказки и атрибута accept
	Allowed []string
	Flashes []flash.Message
}

// EditData — данные формы переименования.
type EditData struct {
	File    FileItem
	Flashes []flash.Message
}

var languageNames = map[string]string{
	"en": "English",
	"ru": "Русский",
	"ar": "العربية",
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// acceptList собирает значение атрибута accept: ".pdf,.txt".
func acceptList(exts []string) string {
	accept := make([]string, 0, len(exts))
	for _, ext := range exts {
		accept = append(accept, "."+ext)
	}
	return strings.Join(accept, ",")
}
