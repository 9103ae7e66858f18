// files.go — операции над файлами: загрузка, переименование, удаление, выдача.
// Каждая операция выполняет одно действие на диске и одно в хранилище записей,
// в этом порядке. Общей транзакции нет: расхождение диска и записей
// логируется на уровне ERROR, но не исправляется.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/filedesk/internal/domain/model"
	"github.com/bigkaa/filedesk/internal/repository"
	"github.com/bigkaa/filedesk/internal/storage/filestore"
)

// Prometheus-метрики файловых операций.
var (
	fileOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fd_file_operations_total",
		Help: "Количество файловых операций (по операции и результату).",
	}, []string{"operation", "status"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fd_upload_bytes_total",
		Help: "Общее количество записанных на диск байт при загрузке.",
	})
)

// Значения лейбла status.
const (
	statusOK       = "ok"
	statusRejected = "rejected"
	statusNotFound = "not_found"
	statusError    = "error"
)

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Reader — содержимое файла; nil означает, что файловой части в запросе нет
	Reader io.Reader
	// Filename — имя файла, как его прислал клиент
	Filename string
}

// FileService — сервис файловых операций.
type FileService struct {
	repo   repository.FileRepository
	store  *filestore.FileStore
	allow  filestore.AllowList
	logger *slog.Logger
}

// NewFileService создаёт сервис файловых операций.
func NewFileService(
	repo repository.FileRepository,
	store *filestore.FileStore,
	allow filestore.AllowList,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		repo:   repo,
		store:  store,
		allow:  allow,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// AllowedExtensions возвращает список разрешённых расширений.
func (s *FileService) AllowedExtensions() []string {
	return s.allow.Extensions()
}

// List возвращает все записи в порядке вставки.
func (s *FileService) List(ctx context.Context) ([]*model.FileRecord, error) {
	files, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка файлов: %w", err)
	}
	return files, nil
}

// Get возвращает запись по ID.
func (s *FileService) Get(ctx context.Context, id int64) (*model.FileRecord, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла %d: %w", id, err)
	}
	return f, nil
}

// Upload проверяет расширение, сохраняет файл под санитизированным именем
// и создаёт запись. Файл с совпадающим именем перезаписывается.
//
// Если запись создать не удалось, файл остаётся на диске без записи.
func (s *FileService) Upload(ctx context.Context, p UploadParams) (*model.FileRecord, error) {
	switch {
	case p.Reader == nil:
		fileOperationsTotal.WithLabelValues("upload", statusRejected).Inc()
		return nil, ErrNoFile
	case p.Filename == "":
		fileOperationsTotal.WithLabelValues("upload", statusRejected).Inc()
		return nil, ErrEmptyFilename
	case !s.allow.Allowed(p.Filename):
		fileOperationsTotal.WithLabelValues("upload", statusRejected).Inc()
		return nil, ErrExtensionNotAllowed
	}

	name := filestore.SanitizeFilename(p.Filename)
	if name == "" {
		fileOperationsTotal.WithLabelValues("upload", statusRejected).Inc()
		return nil, ErrInvalidFilename
	}

	saved, err := s.store.Save(p.Reader, name)
	if err != nil {
		fileOperationsTotal.WithLabelValues("upload", statusError).Inc()
		return nil, fmt.Errorf("сохранение файла %s: %w", name, err)
	}
	uploadBytesTotal.Add(float64(saved.Size))

	rec := &model.FileRecord{Filename: name, Filepath: saved.Path}
	if err := s.repo.Create(ctx, rec); err != nil {
		fileOperationsTotal.WithLabelValues("upload", statusError).Inc()
		s.logger.Error("Файл сохранён, но запись не создана",
			slog.String("path", saved.Path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("создание записи: %w", err)
	}

	fileOperationsTotal.WithLabelValues("upload", statusOK).Inc()
	s.logger.Info("Файл загружен",
		slog.Int64("id", rec.ID),
		slog.String("filename", rec.Filename),
		slog.Int64("size", saved.Size),
	)
	return rec, nil
}

// Rename перемещает файл под санитизированное новое имя и обновляет запись.
// В Filename сохраняется новое имя как есть, в Filepath — путь
// от санитизированного имени.
//
// Если исходного файла нет, возвращается ошибка, запись не меняется.
func (s *FileService) Rename(ctx context.Context, id int64, newName string) (*model.FileRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fileOperationsTotal.WithLabelValues("rename", statusNotFound).Inc()
		}
		return nil, err
	}

	if newName == "" {
		fileOperationsTotal.WithLabelValues("rename", statusRejected).Inc()
		return nil, ErrEmptyName
	}
	safe := filestore.SanitizeFilename(newName)
	if safe == "" {
		fileOperationsTotal.WithLabelValues("rename", statusRejected).Inc()
		return nil, ErrInvalidFilename
	}

	newPath := s.store.PathFor(safe)
	if err := s.store.Rename(rec.Filepath, newPath); err != nil {
		fileOperationsTotal.WithLabelValues("rename", statusError).Inc()
		s.logger.Error("Не удалось переместить файл, запись не изменена",
			slog.Int64("id", rec.ID),
			slog.String("path", rec.Filepath),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	oldPath := rec.Filepath
	rec.Filename = newName
	rec.Filepath = newPath
	if err := s.repo.Update(ctx, rec); err != nil {
		fileOperationsTotal.WithLabelValues("rename", statusError).Inc()
		s.logger.Error("Файл перемещён, но запись не обновлена",
			slog.Int64("id", rec.ID),
			slog.String("old_path", oldPath),
			slog.String("path", newPath),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("обновление записи %d: %w", rec.ID, err)
	}

	fileOperationsTotal.WithLabelValues("rename", statusOK).Inc()
	s.logger.Info("Файл переименован",
		slog.Int64("id", rec.ID),
		slog.String("filename", rec.Filename),
		slog.String("path", rec.Filepath),
	)
	return rec, nil
}

// Delete удаляет файл с диска (если он есть) и затем запись.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fileOperationsTotal.WithLabelValues("delete", statusNotFound).Inc()
		}
		return err
	}

	removed, err := s.store.Remove(rec.Filepath)
	if err != nil {
		fileOperationsTotal.WithLabelValues("delete", statusError).Inc()
		return fmt.Errorf("удаление файла записи %d: %w", rec.ID, err)
	}
	if !removed {
		s.logger.Warn("Файл записи отсутствует на диске, удаляется только запись",
			slog.Int64("id", rec.ID),
			slog.String("path", rec.Filepath),
		)
	}

	if err := s.repo.Delete(ctx, rec.ID); err != nil {
		fileOperationsTotal.WithLabelValues("delete", statusError).Inc()
		if removed {
			s.logger.Error("Файл удалён, но запись осталась",
				slog.Int64("id", rec.ID),
				slog.String("path", rec.Filepath),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("удаление записи %d: %w", rec.ID, err)
	}

	fileOperationsTotal.WithLabelValues("delete", statusOK).Inc()
	s.logger.Info("Файл удалён",
		slog.Int64("id", rec.ID),
		slog.String("filename", rec.Filename),
	)
	return nil
}

// Open возвращает запись и открытый файл для скачивания.
// Наличие файла заранее не проверяется: отсутствующий файл — ошибка
// ввода-вывода, а не ErrNotFound. Вызывающий код обязан закрыть файл.
func (s *FileService) Open(ctx context.Context, id int64) (*model.FileRecord, *os.File, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fileOperationsTotal.WithLabelValues("download", statusNotFound).Inc()
		}
		return nil, nil, err
	}

	f, err := s.store.Open(rec.Filepath)
	if err != nil {
		fileOperationsTotal.WithLabelValues("download", statusError).Inc()
		s.logger.Error("Файл записи недоступен",
			slog.Int64("id", rec.ID),
			slog.String("path", rec.Filepath),
			slog.String("error", err.Error()),
		)
		return nil, nil, err
	}

	fileOperationsTotal.WithLabelValues("download", statusOK).Inc()
	return rec, f, nil
}
