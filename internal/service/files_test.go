package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bigkaa/filedesk/internal/domain/model"
	"github.com/bigkaa/filedesk/internal/repository"
	"github.com/bigkaa/filedesk/internal/storage/filestore"
)

// memRepo — in-memory реализация repository.FileRepository для тестов.
type memRepo struct {
	mu         sync.Mutex
	nextID     int64
	records    []*model.FileRecord
	failCreate error
	failUpdate error
	failDelete error
}

func (r *memRepo) List(_ context.Context) ([]*model.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.FileRecord, 0, len(r.records))
	for _, rec := range r.records {
		c := *rec
		out = append(out, &c)
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*model.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			c := *rec
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Create(_ context.Context, f *model.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.nextID++
	f.ID = r.nextID
	c := *f
	r.records = append(r.records, &c)
	return nil
}

func (r *memRepo) Update(_ context.Context, f *model.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	for _, rec := range r.records {
		if rec.ID == f.ID {
			rec.Filename = f.Filename
			rec.Filepath = f.Filepath
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete != nil {
		return r.failDelete
	}
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService создаёт FileService поверх memRepo и временной директории.
func newTestService(t *testing.T) (*FileService, *memRepo, *filestore.FileStore) {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}
	repo := &memRepo{}
	allow := filestore.NewAllowList([]string{"txt", "pdf", "png", "jpg", "jpeg", "gif"})
	return NewFileService(repo, store, allow, testLogger()), repo, store
}

func upload(t *testing.T, svc *FileService, name, content string) *model.FileRecord {
	t.Helper()
	rec, err := svc.Upload(context.Background(), UploadParams{
		Reader:   strings.NewReader(content),
		Filename: name,
	})
	if err != nil {
		t.Fatalf("Upload(%q) вернул ошибку: %v", name, err)
	}
	return rec
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ошибка чтения директории: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// TestUpload_Allowed проверяет: +1 запись, файл по записанному пути с исходными байтами.
func TestUpload_Allowed(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()

	content := "binary\x00content\xff"
	rec := upload(t, svc, "My Report.PDF", content)

	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("количество записей = %d, ожидалось 1", n)
	}
	if rec.ID == 0 {
		t.Error("ID не назначен")
	}
	if rec.Filename != "My_Report.PDF" {
		t.Errorf("Filename = %q, ожидалось %q", rec.Filename, "My_Report.PDF")
	}
	if rec.Filepath != filepath.Join(store.Dir(), "My_Report.PDF") {
		t.Errorf("Filepath = %q", rec.Filepath)
	}
	if !filepath.IsAbs(rec.Filepath) {
		t.Errorf("Filepath не абсолютный: %s", rec.Filepath)
	}

	data, err := os.ReadFile(rec.Filepath)
	if err != nil {
		t.Fatalf("файл не найден: %v", err)
	}
	if string(data) != content {
		t.Error("содержимое файла отличается от загруженного")
	}
}

// TestUpload_LongName — длинное допустимое имя сохраняется и получает запись.
func TestUpload_LongName(t *testing.T) {
	svc, repo, store := newTestService(t)
	name := strings.Repeat("a", 240) + ".pdf"

	rec := upload(t, svc, name, "pdf")

	if n, _ := repo.Count(context.Background()); n != 1 {
		t.Fatalf("количество записей = %d, ожидалась 1", n)
	}
	if rec.Filepath != store.PathFor(name) {
		t.Errorf("Filepath = %q", rec.Filepath)
	}
	if !fileExists(rec.Filepath) {
		t.Error("файл не сохранён")
	}
}

// TestUpload_Rejected проверяет отказы без изменения состояния.
func TestUpload_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		params  UploadParams
		wantErr error
	}{
		{
			name:    "нет файла",
			params:  UploadParams{Filename: "a.txt"},
			wantErr: ErrNoFile,
		},
		{
			name:    "пустое имя",
			params:  UploadParams{Reader: strings.NewReader("x")},
			wantErr: ErrEmptyFilename,
		},
		{
			name:    "расширение exe",
			params:  UploadParams{Reader: strings.NewReader("x"), Filename: "setup.exe"},
			wantErr: ErrExtensionNotAllowed,
		},
		{
			name:    "нет расширения",
			params:  UploadParams{Reader: strings.NewReader("x"), Filename: "README"},
			wantErr: ErrExtensionNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store := newTestService(t)

			_, err := svc.Upload(context.Background(), tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ошибка = %v, ожидалась %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ошибка %v не оборачивает ErrValidation", err)
			}
			if n, _ := repo.Count(context.Background()); n != 0 {
				t.Errorf("количество записей = %d, ожидалось 0", n)
			}
			if names := dirEntries(t, store.Dir()); len(names) != 0 {
				t.Errorf("в директории появились файлы: %v", names)
			}
		})
	}
}

// TestUpload_Collision проверяет перезапись при совпадении санитизированных имён.
func TestUpload_Collision(t *testing.T) {
	svc, repo, _ := newTestService(t)

	first := upload(t, svc, "doc one.txt", "first")
	second := upload(t, svc, "doc/one.txt", "second")

	if first.Filepath != second.Filepath {
		t.Fatalf("пути различаются: %s и %s", first.Filepath, second.Filepath)
	}
	if n, _ := repo.Count(context.Background()); n != 2 {
		t.Errorf("количество записей = %d, ожидалось 2", n)
	}

	data, _ := os.ReadFile(first.Filepath)
	if string(data) != "second" {
		t.Errorf("по пути первого файла содержимое %q, ожидалось %q", data, "second")
	}
}

// TestUpload_CreateFailureLeavesOrphan проверяет, что при ошибке создания
// записи файл остаётся на диске.
func TestUpload_CreateFailureLeavesOrphan(t *testing.T) {
	svc, repo, store := newTestService(t)
	repo.failCreate = errors.New("база недоступна")

	_, err := svc.Upload(context.Background(), UploadParams{
		Reader:   strings.NewReader("orphan"),
		Filename: "orphan.txt",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if errors.Is(err, ErrValidation) {
		t.Errorf("ошибка хранилища не должна быть ошибкой валидации: %v", err)
	}
	if !fileExists(store.PathFor("orphan.txt")) {
		t.Error("файл должен остаться на диске")
	}
	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Errorf("количество записей = %d, ожидалось 0", n)
	}
}

// TestRename проверяет перемещение файла и обновление записи.
func TestRename(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	rec := upload(t, svc, "draft.pdf", "pdf-bytes")
	oldPath := rec.Filepath

	renamed, err := svc.Rename(ctx, rec.ID, "final.pdf")
	if err != nil {
		t.Fatalf("Rename() вернул ошибку: %v", err)
	}
	if renamed.Filepath != store.PathFor("final.pdf") {
		t.Errorf("Filepath = %q, ожидалось %q", renamed.Filepath, store.PathFor("final.pdf"))
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if got.Filename != "final.pdf" {
		t.Errorf("Filename = %q, ожидалось final.pdf", got.Filename)
	}
	if fileExists(oldPath) {
		t.Error("старый файл всё ещё существует")
	}
	data, _ := os.ReadFile(got.Filepath)
	if string(data) != "pdf-bytes" {
		t.Errorf("содержимое = %q", data)
	}
}

// TestRename_RawNameKept проверяет, что Filename хранит имя как есть,
// а путь строится от санитизированного имени.
func TestRename_RawNameKept(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	rec := upload(t, svc, "a.txt", "x")
	renamed, err := svc.Rename(ctx, rec.ID, "Отчёт за май (final).txt")
	if err != nil {
		t.Fatalf("Rename() вернул ошибку: %v", err)
	}
	if renamed.Filename != "Отчёт за май (final).txt" {
		t.Errorf("Filename = %q", renamed.Filename)
	}
	if renamed.Filepath != store.PathFor("final.txt") {
		t.Errorf("Filepath = %q, ожидалось %q", renamed.Filepath, store.PathFor("final.txt"))
	}
}

// TestRename_Rejected проверяет отказы переименования без изменения записи.
func TestRename_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		newName string
		wantErr error
	}{
		{"пустое имя", "", ErrEmptyName},
		{"имя без безопасных символов", "///", ErrInvalidFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			ctx := context.Background()
			rec := upload(t, svc, "keep.txt", "x")

			_, err := svc.Rename(ctx, rec.ID, tt.newName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ошибка = %v, ожидалась %v", err, tt.wantErr)
			}

			got, _ := svc.Get(ctx, rec.ID)
			if got.Filename != "keep.txt" || got.Filepath != rec.Filepath {
				t.Errorf("запись изменилась: %+v", got)
			}
			if !fileExists(rec.Filepath) {
				t.Error("файл исчез")
			}
		})
	}
}

// TestRename_MissingSource проверяет ошибку при отсутствии файла на диске.
func TestRename_MissingSource(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := upload(t, svc, "gone.txt", "x")
	if err := os.Remove(rec.Filepath); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}

	_, err := svc.Rename(ctx, rec.ID, "new.txt")
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ошибка ввода-вывода, получено: %v", err)
	}

	got, _ := svc.Get(ctx, rec.ID)
	if got.Filename != "gone.txt" {
		t.Errorf("запись изменилась: %+v", got)
	}
}

// TestDelete проверяет удаление записи и файла.
func TestDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := upload(t, svc, "remove.png", "png")
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}

	if _, err := svc.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() после удаления: %v, ожидалась ErrNotFound", err)
	}
	if fileExists(rec.Filepath) {
		t.Error("файл не удалён с диска")
	}
}

// TestDelete_MissingFile проверяет удаление записи, файл которой уже отсутствует.
func TestDelete_MissingFile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	rec := upload(t, svc, "vanished.gif", "gif")
	_ = os.Remove(rec.Filepath)

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("количество записей = %d, ожидалось 0", n)
	}
}

// TestNotFound проверяет операции над несуществующим ID.
func TestNotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	upload(t, svc, "exists.txt", "x")

	if _, err := svc.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: %v", err)
	}
	if _, err := svc.Rename(ctx, 999, "x.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename: %v", err)
	}
	if err := svc.Delete(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: %v", err)
	}
	if _, _, err := svc.Open(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("количество записей = %d, ожидалось 1", n)
	}
}

// TestOpen проверяет выдачу исходных байтов.
func TestOpen(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	content := []byte("%PDF-1.7\n\x00\x01")
	rec, err := svc.Upload(ctx, UploadParams{Reader: bytes.NewReader(content), Filename: "report.pdf"})
	if err != nil {
		t.Fatalf("Upload() вернул ошибку: %v", err)
	}

	got, f, err := svc.Open(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer f.Close()

	if got.ID != rec.ID {
		t.Errorf("ID = %d, ожидалось %d", got.ID, rec.ID)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("байты отличаются от загруженных")
	}
}

// TestOpen_MissingFile проверяет, что отсутствие файла — не ErrNotFound.
func TestOpen_MissingFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := upload(t, svc, "lost.txt", "x")
	_ = os.Remove(rec.Filepath)

	_, _, err := svc.Open(ctx, rec.ID)
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("отсутствие файла не должно быть ErrNotFound")
	}
}

// TestList проверяет порядок вставки.
func TestList(t *testing.T) {
	svc, _, _ := newTestService(t)

	upload(t, svc, "b.txt", "1")
	upload(t, svc, "a.txt", "2")
	upload(t, svc, "c.txt", "3")

	files, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Filename)
	}
	if strings.Join(names, ",") != "b.txt,a.txt,c.txt" {
		t.Errorf("порядок = %v", names)
	}
}

// fileExists проверяет наличие файла на диске.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
