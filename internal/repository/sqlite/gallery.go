package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type galleryRepo struct {
	db     dbtx
	lister *lister
}

const galleryColumns = `id, baker_id, file_id, title, description, category, featured, sort, created_at, updated_at`

func (r *galleryRepo) FindByID(ctx context.Context, bakerID, id int64) (*repository.GalleryItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+galleryColumns+` FROM gallery_items WHERE baker_id = ? AND id = ?`, bakerID, id)
	item, err := scanGalleryItem(row)
	return item, mapNoRows(err)
}

func (r *galleryRepo) Create(ctx context.Context, item *repository.GalleryItem) (*repository.GalleryItem, error) {
	if item == nil {
		return nil, errors.New("gallery item is nil")
	}
	stampTimes(&item.CreatedAt, &item.UpdatedAt)
	const stmt = `INSERT INTO gallery_items(baker_id, file_id, title, description, category, featured, sort, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		item.BakerID, optionalInt64(item.FileID), item.Title, item.Description, item.Category,
		boolToInt(item.Featured), item.Sort, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		item.ID = id
	}
	return item, nil
}

func (r *galleryRepo) Update(ctx context.Context, item *repository.GalleryItem) error {
	if item == nil {
		return errors.New("gallery item is nil")
	}
	const stmt = `UPDATE gallery_items
                  SET file_id = ?, title = ?, description = ?, category = ?, featured = ?, sort = ?, updated_at = ?
                  WHERE baker_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		optionalInt64(item.FileID), item.Title, item.Description, item.Category, boolToInt(item.Featured), item.Sort,
		item.UpdatedAt, item.BakerID, item.ID,
	)
	return affectedOrNotFound(res, err)
}

func (r *galleryRepo) Delete(ctx context.Context, bakerID, id int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx, `DELETE FROM gallery_items WHERE baker_id = ? AND id = ?`, bakerID, id))
}

func (r *galleryRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.GalleryItem, int64, error) {
	return listRows(ctx, r.lister, repository.GallerySchema, "gallery_items", galleryColumns, q, scanGalleryItem)
}

func scanGalleryItem(row rowScanner) (*repository.GalleryItem, error) {
	var (
		item     repository.GalleryItem
		fileID   sql.NullInt64
		featured int64
	)
	if err := row.Scan(&item.ID, &item.BakerID, &fileID, &item.Title, &item.Description, &item.Category, &featured,
		&item.Sort, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.FileID = nullableIntPtr(fileID)
	item.Featured = featured == 1
	return &item, nil
}
