package pages

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/bigkaa/filedesk/internal/ui/flash"
	"github.com/bigkaa/filedesk/internal/ui/i18n"
)

func render(t *testing.T, lang string, c templ.Component) string {
	t.Helper()
	b, err := i18n.Load("en", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("i18n.Load() вернул ошибку: %v", err)
	}
	ctx := i18n.WithLang(i18n.WithBundle(context.Background(), b), lang)

	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		t.Fatalf("Render() вернул ошибку: %v", err)
	}
	return sb.String()
}

func TestIndex(t *testing.T) {
	html := render(t, "en", Index(IndexData{
		Files: []FileItem{{ID: 7, Filename: "report.pdf"}},
	}))

	for _, want := range []string{
		`<html lang="en" dir="ltr">`,
		"Uploaded files",
		"report.pdf",
		`href="/download/7"`,
		`href="/static/css/app.css"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("в странице нет %q", want)
		}
	}
}

func TestIndex_Empty(t *testing.T) {
	html := render(t, "ru", Index(IndexData{}))
	if !strings.Contains(html, "Файлов пока нет.") {
		t.Error("нет сообщения о пустом списке")
	}
	if strings.Contains(html, "<table>") {
		t.Error("для пустого списка таблица не выводится")
	}
}

func TestAdmin(t *testing.T) {
	html := render(t, "en", Admin(AdminData{
		Files:   []FileItem{{ID: 3, Filename: "a.txt"}},
		Allowed: []string{"pdf", "txt"},
		Flashes: []flash.Message{{Category: flash.CategorySuccess, Key: "flash.uploaded"}},
	}))

	for _, want := range []string{
		`enctype="multipart/form-data"`,
		`name="file"`,
		`accept=".pdf,.txt"`,
		"Allowed types: pdf, txt",
		`action="/delete/3"`,
		`href="/edit/3"`,
		`<div class="flash success" role="status">File uploaded successfully!</div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("в странице нет %q", want)
		}
	}
}

func TestEdit_Escaping(t *testing.T) {
	html := render(t, "en", Edit(EditData{
		File: FileItem{ID: 1, Filename: `"><script>alert(1)</script>`},
	}))

	if strings.Contains(html, "<script>") {
		t.Error("имя файла не экранировано")
	}
	if !strings.Contains(html, `name="filename"`) {
		t.Error("нет поля filename")
	}
	if !strings.Contains(html, `action="/edit/1"`) {
		t.Error("неверный action формы")
	}
}

func TestLayout_RTL(t *testing.T) {
	html := render(t, "ar", NotFound())
	if !strings.Contains(html, `<html lang="ar" dir="rtl">`) {
		t.Error("для арабского ожидается dir=rtl")
	}
	if !strings.Contains(html, "غير موجود") {
		t.Error("заголовок не переведён")
	}
	if !strings.Contains(html, `<option value="ar" selected>`) {
		t.Error("текущий язык не выбран в форме")
	}
}

// TestRender_CanceledContext — отменённый контекст прерывает рендер до записи.
func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sb strings.Builder
	if err := Index(IndexData{}).Render(ctx, &sb); err == nil {
		t.Fatal("ожидалась ошибка отменённого контекста")
	}
	if sb.Len() != 0 {
		t.Errorf("при отменённом контексте записано %d байт", sb.Len())
	}
}

// TestLayout_WrapsContent — содержимое страницы выводится внутри <main>
// после flash-сообщений.
func TestLayout_WrapsContent(t *testing.T) {
	html := render(t, "ru", Edit(EditData{
		File:    FileItem{ID: 5, Filename: "draft.pdf"},
		Flashes: []flash.Message{{Category: flash.CategoryError, Key: "flash.empty_name"}},
	}))

	mainAt := strings.Index(html, "<main>")
	flashAt := strings.Index(html, `class="flash error"`)
	formAt := strings.Index(html, `action="/edit/5"`)
	endAt := strings.Index(html, "</main>")
	if mainAt < 0 || flashAt < mainAt || formAt < flashAt || endAt < formAt {
		t.Errorf("нарушен порядок: main=%d flash=%d form=%d /main=%d", mainAt, flashAt, formAt, endAt)
	}
	if !strings.Contains(html, `value="draft.pdf"`) {
		t.Error("в поле не подставлено текущее имя")
	}
}
