// files.go — JSON API чтения записей:
// GET /api/v1/files и GET /api/v1/files/{id}.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "github.com/bigkaa/filedesk/internal/api/errors"
	"github.com/bigkaa/filedesk/internal/api/params"
	"github.com/bigkaa/filedesk/internal/domain/model"
	"github.com/bigkaa/filedesk/internal/service"
)

// FileReader — чтение записей о файлах.
type FileReader interface {
	List(ctx context.Context) ([]*model.FileRecord, error)
	Get(ctx context.Context, id int64) (*model.FileRecord, error)
}

// FilesHandler — обработчик JSON API файлов.
type FilesHandler struct {
	files  FileReader
	logger *slog.Logger
}

// NewFilesHandler создаёт обработчик JSON API файлов.
func NewFilesHandler(files FileReader, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		files:  files,
		logger: logger.With(slog.String("component", "api_files")),
	}
}

// fileResponse — запись о файле в ответе API.
type fileResponse struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}

type fileListResponse struct {
	Items []fileResponse `json:"items"`
	Total int            `json:"total"`
}

func toFileResponse(f *model.FileRecord) fileResponse {
	return fileResponse{
		ID:          f.ID,
		Filename:    f.Filename,
		DownloadURL: "/download/" + strconv.FormatInt(f.ID, 10),
	}
}

// ListFiles — GET /api/v1/files. Все записи в порядке вставки.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения списка файлов", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Внутренняя ошибка при получении списка файлов")
		return
	}

	resp := fileListResponse{Items: make([]fileResponse, 0, len(files)), Total: len(files)}
	for _, f := range files {
		resp.Items = append(resp.Items, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFile — GET /api/v1/files/{id}.
func (h *FilesHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := params.FileID(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	f, err := h.files.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		h.logger.Error("Ошибка получения файла",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка при получении файла")
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(f))
}
