package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type bakerRepo struct {
	db     dbtx
	lister *lister
}

const bakerColumns = `id, user_id, slug, business_name, bio, phone, email, location, theme_name, logo_file_id, published, created_at, updated_at`

func (r *bakerRepo) FindByID(ctx context.Context, id int64) (*repository.Baker, error) {
	return r.findBy(ctx, "id", id)
}

func (r *bakerRepo) FindByUserID(ctx context.Context, userID int64) (*repository.Baker, error) {
	return r.findBy(ctx, "user_id", userID)
}

func (r *bakerRepo) FindBySlug(ctx context.Context, slug string) (*repository.Baker, error) {
	return r.findBy(ctx, "slug", slug)
}

func (r *bakerRepo) findBy(ctx context.Context, column string, value any) (*repository.Baker, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bakerColumns+` FROM bakers WHERE `+column+` = ?`, value)
	baker, err := scanBaker(row)
	return baker, mapNoRows(err)
}

func (r *bakerRepo) Create(ctx context.Context, baker *repository.Baker) (*repository.Baker, error) {
	if baker == nil {
		return nil, errors.New("baker is nil")
	}
	stampTimes(&baker.CreatedAt, &baker.UpdatedAt)
	const stmt = `INSERT INTO bakers(user_id, slug, business_name, bio, phone, email, location, theme_name, logo_file_id, published, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		baker.UserID, baker.Slug, baker.BusinessName, baker.Bio, baker.Phone, baker.Email, baker.Location,
		baker.ThemeName, optionalInt64(baker.LogoFileID), boolToInt(baker.Published), baker.CreatedAt, baker.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		baker.ID = id
	}
	return baker, nil
}

func (r *bakerRepo) Update(ctx context.Context, baker *repository.Baker) error {
	if baker == nil {
		return errors.New("baker is nil")
	}
	const stmt = `UPDATE bakers
                  SET slug = ?, business_name = ?, bio = ?, phone = ?, email = ?, location = ?, theme_name = ?, logo_file_id = ?, published = ?, updated_at = ?
                  WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		baker.Slug, baker.BusinessName, baker.Bio, baker.Phone, baker.Email, baker.Location, baker.ThemeName,
		optionalInt64(baker.LogoFileID), boolToInt(baker.Published), baker.UpdatedAt, baker.ID,
	)
	return affectedOrNotFound(res, err)
}

func (r *bakerRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.Baker, int64, error) {
	return listRows(ctx, r.lister, repository.BakerSchema, "bakers", bakerColumns, q, scanBaker)
}

func scanBaker(row rowScanner) (*repository.Baker, error) {
	var (
		baker     repository.Baker
		logo      sql.NullInt64
		published int64
	)
	if err := row.Scan(&baker.ID, &baker.UserID, &baker.Slug, &baker.BusinessName, &baker.Bio, &baker.Phone, &baker.Email,
		&baker.Location, &baker.ThemeName, &logo, &published, &baker.CreatedAt, &baker.UpdatedAt); err != nil {
		return nil, err
	}
	baker.LogoFileID = nullableIntPtr(logo)
	baker.Published = published == 1
	return &baker, nil
}
