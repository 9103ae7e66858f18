package filestore

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// unsafeChars — всё, что не входит в [A-Za-z0-9_.-].
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename приводит пользовательское имя файла к безопасному виду:
// NFKD-нормализация, отбрасывание не-ASCII символов, разделители пути
// заменяются пробелами, пробельные группы — на "_", остальные небезопасные
// символы удаляются, ведущие и завершающие "." и "_" обрезаются.
// Результат может быть пустой строкой.
//
// Пример: "../../etc/My Report (v2).pdf" → "etc_My_Report_v2.pdf"
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	ascii.Grow(len(name))
	for _, r := range name {
		if r < utf8.RuneSelf {
			ascii.WriteRune(r)
		}
	}
	name = ascii.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")

	return strings.Trim(name, "._")
}

// AllowList — набор разрешённых расширений (нижний регистр, без точки).
type AllowList map[string]struct{}

// NewAllowList создаёт AllowList из списка расширений.
func NewAllowList(exts []string) AllowList {
	a := make(AllowList, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			a[e] = struct{}{}
		}
	}
	return a
}

// Allowed проверяет расширение имени файла: подстрока после последней точки,
// без учёта регистра. Имя без точки не допускается.
func (a AllowList) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := a[strings.ToLower(filename[i+1:])]
	return ok
}

// Extensions возвращает отсортированный список расширений.
func (a AllowList) Extensions() []string {
	out := make([]string, 0, len(a))
	for e := range a {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
