package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type fileRepo struct {
	db     dbtx
	lister *lister
}

const fileColumns = `id, baker_id, storage_key, thumbnail_key, original_name, mime_type, size, width, height, created_at`

func (r *fileRepo) FindByID(ctx context.Context, id int64) (*repository.File, error) {
	file, err := scanFile(r.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
	return file, mapNoRows(err)
}

func (r *fileRepo) Create(ctx context.Context, file *repository.File) (*repository.File, error) {
	if file == nil {
		return nil, errors.New("file is nil")
	}
	if file.CreatedAt == 0 {
		file.CreatedAt = time.Now().Unix()
	}
	const stmt = `INSERT INTO files(baker_id, storage_key, thumbnail_key, original_name, mime_type, size, width, height, created_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		file.BakerID, file.StorageKey, file.ThumbnailKey, file.OriginalName, file.MimeType, file.Size, file.Width, file.Height, file.CreatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		file.ID = id
	}
	return file, nil
}

func (r *fileRepo) Delete(ctx context.Context, bakerID, id int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx, `DELETE FROM files WHERE baker_id = ? AND id = ?`, bakerID, id))
}

func (r *fileRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.File, int64, error) {
	return listRows(ctx, r.lister, repository.FileSchema, "files", fileColumns, q, scanFile)
}

func scanFile(row rowScanner) (*repository.File, error) {
	var f repository.File
	if err := row.Scan(&f.ID, &f.BakerID, &f.StorageKey, &f.ThumbnailKey, &f.OriginalName, &f.MimeType, &f.Size, &f.Width, &f.Height, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
