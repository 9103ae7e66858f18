// Пакет repository — хранилище записей о файлах.
// Две реализации одного интерфейса: PostgreSQL (pgx) и SQLite (database/sql).
// Все запросы — чистый SQL, без ORM.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bigkaa/filedesk/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
)

// FileRepository — интерфейс CRUD для таблицы files.
type FileRepository interface {
	// List возвращает все записи в порядке вставки.
	List(ctx context.Context) ([]*model.FileRecord, error)
	// GetByID возвращает запись по идентификатору или ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.FileRecord, error)
	// Create сохраняет новую запись и заполняет f.ID.
	Create(ctx context.Context, f *model.FileRecord) error
	// Update перезаписывает filename и filepath существующей записи.
	Update(ctx context.Context, f *model.FileRecord) error
	// Delete удаляет запись безвозвратно.
	Delete(ctx context.Context, id int64) error
	// Count возвращает количество записей.
	Count(ctx context.Context) (int, error)
}

// DBTX — интерфейс для выполнения SQL-запросов через pgx.
// Реализуется как *pgxpool.Pool, так и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
