package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/filedesk/internal/domain/model"
)

// fileRepo — реализация FileRepository для PostgreSQL.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов поверх pgx.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) List(ctx context.Context) ([]*model.FileRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT id, filename, filepath FROM files ORDER BY id`)
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

func (r *fileRepo) GetByID(ctx context.Context, id int64) (*model.FileRecord, error) {
	f := &model.FileRecord{}
	err := r.db.QueryRow(ctx,
		`SELECT id, filename, filepath FROM files WHERE id = $1`, id,
	).Scan(&f.ID, &f.Filename, &f.Filepath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) Create(ctx context.Context, f *model.FileRecord) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO files (filename, filepath) VALUES ($1, $2) RETURNING id`,
		f.Filename, f.Filepath,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания записи файла: %w", err)
	}
	return nil
}

func (r *fileRepo) Update(ctx context.Context, f *model.FileRecord) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files SET filename = $2, filepath = $3 WHERE id = $1`,
		f.ID, f.Filename, f.Filepath,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}
	return count, nil
}
