// Пакет filestore — операции с файлами в плоской директории загрузок.
// Запись через temp-файл и атомарный rename, переименование, удаление,
// а также приведение имён к безопасному виду и проверка расширений.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore — управление файлами в директории загрузок.
type FileStore struct {
	// dir — абсолютный путь директории загрузок
	dir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// Path — абсолютный путь файла на диске
	Path string
	// Size — размер записанных данных в байтах
	Size int64
}

// New создаёт FileStore. Директория создаётся, если её нет.
func New(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("некорректный путь директории загрузок %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", abs, err)
	}

	return &FileStore{dir: abs}, nil
}

// Dir возвращает путь к директории загрузок.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// PathFor возвращает абсолютный путь для уже санитизированного имени.
func (fs *FileStore) PathFor(name string) string {
	return filepath.Join(fs.dir, name)
}

// Save записывает данные из reader в файл name внутри директории загрузок.
// Существующий файл с тем же именем перезаписывается.
//
// Паттерн: temp файл → запись → fsync → атомарный rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Save(reader io.Reader, name string) (*SaveResult, error) {
	fullPath := fs.PathFor(name)
	// Длина имени temp-файла не зависит от name: любое допустимое
	// для файловой системы имя можно сохранить.
	tmpPath := filepath.Join(fs.dir, ".upload-"+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{Path: fullPath, Size: size}, nil
}

// Rename перемещает файл oldPath в newPath.
// Отсутствие исходного файла — ошибка.
func (fs *FileStore) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("ошибка переименования %s → %s: %w", oldPath, newPath, err)
	}
	return nil
}

// Remove удаляет файл по абсолютному пути.
// Возвращает removed=false без ошибки, если файла уже нет.
func (fs *FileStore) Remove(path string) (removed bool, err error) {
	err = os.Remove(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка удаления файла %s: %w", path, err)
	}
	return true, nil
}

// Open открывает файл для чтения. Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	return f, nil
}

// Check проверяет, что директория загрузок существует и является директорией.
func (fs *FileStore) Check() error {
	info, err := os.Stat(fs.dir)
	if err != nil {
		return fmt.Errorf("директория загрузок недоступна: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является директорией", fs.dir)
	}
	return nil
}

// CheckReady — проверка директории загрузок для readiness probe.
// Возвращает статус ("ok", "fail") и сообщение.
func (fs *FileStore) CheckReady() (status string, message string) {
	if err := fs.Check(); err != nil {
		return "fail", err.Error()
	}
	return "ok", fs.dir
}
