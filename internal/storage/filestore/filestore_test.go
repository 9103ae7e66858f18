package filestore

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNew_CreatesDirectory проверяет создание директории загрузок.
func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if fs.Dir() != dir {
		t.Errorf("ожидался путь %s, получен %s", dir, fs.Dir())
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("директория не создана: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("путь не является директорией")
	}
	if err := fs.Check(); err != nil {
		t.Errorf("Check() вернул ошибку: %v", err)
	}
}

// TestSave проверяет побайтовое сохранение файла.
func TestSave(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	content := []byte("%PDF-1.4 тестовые данные\x00\x01\x02")
	result, err := fs.Save(bytes.NewReader(content), "report.pdf")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	if result.Path != filepath.Join(fs.Dir(), "report.pdf") {
		t.Errorf("путь: ожидался %s, получен %s", filepath.Join(fs.Dir(), "report.pdf"), result.Path)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("размер: ожидалось %d, получено %d", len(content), result.Size)
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("ошибка чтения файла: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("содержимое файла не совпадает")
	}
}

// TestSave_NoTmpFile проверяет, что temp файл удалён после сохранения.
func TestSave_NoTmpFile(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if _, err := fs.Save(strings.NewReader("data"), "file.txt"); err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	entries, err := os.ReadDir(fs.Dir())
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp файл не удалён: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("ожидался 1 файл в директории, найдено %d", len(entries))
	}
}

// TestSave_LongName — имя близкое к пределу файловой системы (255 байт)
// сохраняется как есть, без ограничений со стороны temp-файла.
func TestSave_LongName(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	name := strings.Repeat("a", 240) + ".pdf"
	saved, err := fs.Save(strings.NewReader("long"), name)
	if err != nil {
		t.Fatalf("ошибка сохранения файла с длинным именем: %v", err)
	}
	if saved.Path != filepath.Join(fs.Dir(), name) {
		t.Errorf("Path = %s, ожидался %s", saved.Path, filepath.Join(fs.Dir(), name))
	}

	entries, err := os.ReadDir(fs.Dir())
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != name {
		t.Errorf("в директории ожидался только %s, найдено %d записей", name, len(entries))
	}
}

// failingReader возвращает ошибку после первых байт.
type failingReader struct{ done bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.ErrUnexpectedEOF
	}
	r.done = true
	return copy(p, "part"), nil
}

// TestSave_ReaderError проверяет, что при ошибке чтения не остаётся ни файла, ни temp.
func TestSave_ReaderError(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if _, err := fs.Save(&failingReader{}, "broken.txt"); err == nil {
		t.Fatal("ожидалась ошибка сохранения")
	}

	entries, _ := os.ReadDir(fs.Dir())
	if len(entries) != 0 {
		t.Errorf("директория должна быть пустой, найдено %d файлов", len(entries))
	}
}

// TestSave_Overwrite проверяет, что второе сохранение с тем же именем
// перезаписывает первое.
func TestSave_Overwrite(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	first, err := fs.Save(strings.NewReader("first"), "same.txt")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}
	second, err := fs.Save(strings.NewReader("second"), "same.txt")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	if first.Path != second.Path {
		t.Fatalf("пути различаются: %s и %s", first.Path, second.Path)
	}
	data, _ := os.ReadFile(first.Path)
	if string(data) != "second" {
		t.Errorf("содержимое = %q, ожидалось %q", data, "second")
	}
}

// TestRename проверяет перемещение файла.
func TestRename(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	saved, err := fs.Save(strings.NewReader("content"), "draft.pdf")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	newPath := fs.PathFor("final.pdf")
	if err := fs.Rename(saved.Path, newPath); err != nil {
		t.Fatalf("ошибка переименования: %v", err)
	}

	if fileExists(saved.Path) {
		t.Error("старый файл всё ещё существует")
	}
	data, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatalf("новый файл не найден: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("содержимое = %q, ожидалось %q", data, "content")
	}
}

// TestRename_MissingSource проверяет ошибку при отсутствии исходного файла.
func TestRename_MissingSource(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	err = fs.Rename(fs.PathFor("missing.txt"), fs.PathFor("other.txt"))
	if err == nil {
		t.Fatal("ожидалась ошибка переименования отсутствующего файла")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ожидалась ошибка not-exist, получено: %v", err)
	}
}

// TestRemove проверяет удаление существующего и отсутствующего файла.
func TestRemove(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	saved, err := fs.Save(strings.NewReader("x"), "gone.txt")
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	removed, err := fs.Remove(saved.Path)
	if err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if !removed {
		t.Error("Remove() = false для существующего файла")
	}
	if fileExists(saved.Path) {
		t.Error("файл не удалён")
	}

	// Повторное удаление — не ошибка
	removed, err = fs.Remove(saved.Path)
	if err != nil {
		t.Fatalf("повторное удаление вернуло ошибку: %v", err)
	}
	if removed {
		t.Error("Remove() = true для отсутствующего файла")
	}
}

// TestOpen_Missing проверяет ошибку открытия отсутствующего файла.
func TestOpen_Missing(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if _, err := fs.Open(fs.PathFor("nope.txt")); err == nil {
		t.Error("ожидалась ошибка открытия")
	}
}

// TestCheckReady проверяет статус директории загрузок.
func TestCheckReady(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if status, msg := fs.CheckReady(); status != "ok" {
		t.Errorf("CheckReady() = %q (%s), ожидался ok", status, msg)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("ошибка удаления директории: %v", err)
	}
	if status, _ := fs.CheckReady(); status != "fail" {
		t.Errorf("CheckReady() после удаления = %q, ожидался fail", status)
	}
}

// fileExists проверяет наличие файла на диске.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
