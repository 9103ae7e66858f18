package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bigkaa/filedesk/internal/domain/model"
)

// sqliteFileRepo — реализация FileRepository для SQLite.
// AUTOINCREMENT гарантирует, что id удалённых записей не переиспользуются.
type sqliteFileRepo struct {
	db *sql.DB
}

// NewSQLiteFileRepository создаёт репозиторий файлов поверх database/sql.
func NewSQLiteFileRepository(db *sql.DB) FileRepository {
	return &sqliteFileRepo{db: db}
}

func (r *sqliteFileRepo) List(ctx context.Context) ([]*model.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, filename, filepath FROM files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.FileRecord
	for rows.Next() {
		f := &model.FileRecord{}
		if err := rows.Scan(&f.ID, &f.Filename, &f.Filepath); err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *sqliteFileRepo) GetByID(ctx context.Context, id int64) (*model.FileRecord, error) {
	f := &model.FileRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, filename, filepath FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.Filename, &f.Filepath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *sqliteFileRepo) Create(ctx context.Context, f *model.FileRecord) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO files (filename, filepath) VALUES (?, ?)`,
		f.Filename, f.Filepath,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания записи файла: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ошибка получения id записи: %w", err)
	}
	f.ID = id
	return nil
}

func (r *sqliteFileRepo) Update(ctx context.Context, f *model.FileRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE files SET filename = ?, filepath = ? WHERE id = ?`,
		f.Filename, f.Filepath, f.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления файла: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteFileRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteFileRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}
	return count, nil
}

// requireAffected возвращает ErrNotFound, если запрос не затронул ни одной строки.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа строк: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
