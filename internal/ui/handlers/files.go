// Пакет handlers — HTTP-обработчики UI.
// Файл files.go — публичный список, страница управления с загрузкой,
// удаление, переименование и скачивание файлов.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/filedesk/internal/api/params"
	"github.com/bigkaa/filedesk/internal/domain/model"
	"github.com/bigkaa/filedesk/internal/service"
	"github.com/bigkaa/filedesk/internal/ui/flash"
	"github.com/bigkaa/filedesk/internal/ui/i18n"
	"github.com/bigkaa/filedesk/internal/ui/pages"
)

// Память под multipart-форму; всё сверх неё уходит во временные файлы.
const multipartMemory = 8 << 20

// FileService — файловые операции, нужные UI.
type FileService interface {
	List(ctx context.Context) ([]*model.FileRecord, error)
	Get(ctx context.Context, id int64) (*model.FileRecord, error)
	Upload(ctx context.Context, p service.UploadParams) (*model.FileRecord, error)
	Rename(ctx context.Context, id int64, newName string) (*model.FileRecord, error)
	Delete(ctx context.Context, id int64) error
	Open(ctx context.Context, id int64) (*model.FileRecord, *os.File, error)
	AllowedExtensions() []string
}

// FilesHandler — обработчик страниц работы с файлами.
type FilesHandler struct {
	files         FileService
	flash         *flash.Manager
	maxUploadSize int64
	logger        *slog.Logger
}

// NewFilesHandler создаёт FilesHandler.
// maxUploadSize — предел размера тела запроса загрузки в байтах.
func NewFilesHandler(files FileService, flashMgr *flash.Manager, maxUploadSize int64, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		files:         files,
		flash:         flashMgr,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "ui.files")),
	}
}

// Register регистрирует маршруты UI на роутере.
func (h *FilesHandler) Register(r chi.Router) {
	r.Get("/", h.HandleIndex)
	r.Get("/admin", h.HandleAdmin)
	r.Post("/admin", h.HandleUpload)
	r.Post("/delete/{id}", h.HandleDelete)
	r.Get("/edit/{id}", h.HandleEditForm)
	r.Post("/edit/{id}", h.HandleRename)
	r.Get("/download/{id}", h.HandleDownload)
	r.Post("/lang", i18n.HandleSetLanguage)
}

// HandleIndex обрабатывает GET / — публичный список файлов.
func (h *FilesHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	items, ok := h.listItems(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pages.Index(pages.IndexData{
		Files:   items,
		Flashes: h.flash.Pop(w, r),
	}))
}

// HandleAdmin обрабатывает GET /admin — список с формой загрузки и действиями.
func (h *FilesHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	items, ok := h.listItems(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pages.Admin(pages.AdminData{
		Files:   items,
		Allowed: h.files.AllowedExtensions(),
		Flashes: h.flash.Pop(w, r),
	}))
}

// HandleUpload обрабатывает POST /admin — загрузку файла.
// Любой исход, кроме внутренней ошибки, завершается редиректом на /admin
// с flash-сообщением.
func (h *FilesHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	p := service.UploadParams{}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.logger.Debug("Не удалось разобрать multipart-форму", slog.String("error", err.Error()))
	} else {
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			p.Reader = file
			p.Filename = header.Filename
		case errors.Is(err, http.ErrMissingFile) && len(r.MultipartForm.Value["file"]) > 0:
			// Поле file есть, но файл не выбран: браузер шлёт часть с пустым filename
			p.Reader = http.NoBody
		}
	}

	_, err := h.files.Upload(r.Context(), p)
	if err != nil {
		if key, ok := validationKey(err); ok {
			h.redirectWithFlash(w, r, "/admin", flash.CategoryError, key)
			return
		}
		h.internalError(w, "Ошибка загрузки файла", err)
		return
	}

	h.redirectWithFlash(w, r, "/admin", flash.CategorySuccess, "flash.uploaded")
}

// HandleDelete обрабатывает POST /delete/{id}.
func (h *FilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := params.FileID(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if err := h.files.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.internalError(w, "Ошибка удаления файла", err)
		return
	}

	h.redirectWithFlash(w, r, "/admin", flash.CategorySuccess, "flash.deleted")
}

// HandleEditForm обрабатывает GET /edit/{id} — форму переименования.
func (h *FilesHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := params.FileID(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	f, err := h.files.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.internalError(w, "Ошибка получения файла", err)
		return
	}

	h.render(w, r, http.StatusOK, pages.Edit(pages.EditData{
		File:    pages.FileItem{ID: f.ID, Filename: f.Filename},
		Flashes: h.flash.Pop(w, r),
	}))
}

// HandleRename обрабатывает POST /edit/{id}.
// Некорректное имя — форма показывается повторно с сообщением, запись не меняется.
func (h *FilesHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, err := params.FileID(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	_, err = h.files.Rename(r.Context(), id, r.PostFormValue("filename"))
	if err == nil {
		h.redirectWithFlash(w, r, "/admin", flash.CategorySuccess, "flash.renamed")
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		h.NotFound(w, r)
		return
	}

	key, ok := validationKey(err)
	if !ok {
		h.internalError(w, "Ошибка переименования файла", err)
		return
	}

	f, getErr := h.files.Get(r.Context(), id)
	if getErr != nil {
		h.internalError(w, "Ошибка получения файла", getErr)
		return
	}
	flashes := append(h.flash.Pop(w, r), flash.Message{Category: flash.CategoryError, Key: key})
	h.render(w, r, http.StatusOK, pages.Edit(pages.EditData{
		File:    pages.FileItem{ID: f.ID, Filename: f.Filename},
		Flashes: flashes,
	}))
}

// HandleDownload обрабатывает GET /download/{id} — отдачу файла вложением.
// Отсутствующий на диске файл — внутренняя ошибка, а не 404.
func (h *FilesHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := params.FileID(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	rec, f, err := h.files.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.internalError(w, "Ошибка открытия файла", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.internalError(w, "Ошибка чтения файла", err)
		return
	}

	name := filepath.Base(rec.Filepath)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)

	// ServeContent определяет Content-Type по расширению и поддерживает Range
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// NotFound отдаёт страницу 404.
func (h *FilesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, pages.NotFound())
}

// --- Вспомогательные методы ---

func (h *FilesHandler) listItems(w http.ResponseWriter, r *http.Request) ([]pages.FileItem, bool) {
	files, err := h.files.List(r.Context())
	if err != nil {
		h.internalError(w, "Ошибка получения списка файлов", err)
		return nil, false
	}

	items := make([]pages.FileItem, 0, len(files))
	for _, f := range files {
		items = append(items, pages.FileItem{ID: f.ID, Filename: f.Filename})
	}
	return items, true
}

func (h *FilesHandler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

func (h *FilesHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, category, key string) {
	if err := h.flash.Add(w, r, category, key); err != nil {
		h.logger.Warn("Не удалось сохранить flash-сообщение", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *FilesHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// validationKey возвращает ключ flash-сообщения для ошибки валидации.
func validationKey(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrNoFile):
		return "flash.no_file", true
	case errors.Is(err, service.ErrEmptyFilename):
		return "flash.empty_filename", true
	case errors.Is(err, service.ErrExtensionNotAllowed):
		return "flash.extension_not_allowed", true
	case errors.Is(err, service.ErrInvalidFilename):
		return "flash.invalid_filename", true
	case errors.Is(err, service.ErrEmptyName):
		return "flash.empty_name", true
	}
	return "", false
}
