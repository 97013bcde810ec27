package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type themeRepo struct {
	db     dbtx
	lister *lister
}

const themeColumns = `id, name, display_name, primary_color, accent_color, font_family, featured, created_at, updated_at`

func (r *themeRepo) FindByID(ctx context.Context, id int64) (*repository.Theme, error) {
	theme, err := scanTheme(r.db.QueryRowContext(ctx, `SELECT `+themeColumns+` FROM themes WHERE id = ?`, id))
	return theme, mapNoRows(err)
}

func (r *themeRepo) FindByName(ctx context.Context, name string) (*repository.Theme, error) {
	theme, err := scanTheme(r.db.QueryRowContext(ctx, `SELECT `+themeColumns+` FROM themes WHERE name = ?`, name))
	return theme, mapNoRows(err)
}

func (r *themeRepo) Create(ctx context.Context, theme *repository.Theme) (*repository.Theme, error) {
	if theme == nil {
		return nil, errors.New("theme is nil")
	}
	stampTimes(&theme.CreatedAt, &theme.UpdatedAt)
	const stmt = `INSERT INTO themes(name, display_name, primary_color, accent_color, font_family, featured, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		theme.Name, theme.DisplayName, theme.PrimaryColor, theme.AccentColor, theme.FontFamily,
		boolToInt(theme.Featured), theme.CreatedAt, theme.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		theme.ID = id
	}
	return theme, nil
}

func (r *themeRepo) Update(ctx context.Context, theme *repository.Theme) error {
	if theme == nil {
		return errors.New("theme is nil")
	}
	const stmt = `UPDATE themes
                  SET name = ?, display_name = ?, primary_color = ?, accent_color = ?, font_family = ?, featured = ?, updated_at = ?
                  WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		theme.Name, theme.DisplayName, theme.PrimaryColor, theme.AccentColor, theme.FontFamily,
		boolToInt(theme.Featured), theme.UpdatedAt, theme.ID,
	)
	return affectedOrNotFound(res, err)
}

// Upsert inserts or replaces a theme keyed by name.
func (r *themeRepo) Upsert(ctx context.Context, theme *repository.Theme) error {
	if theme == nil {
		return errors.New("theme is nil")
	}
	stampTimes(&theme.CreatedAt, &theme.UpdatedAt)
	const stmt = `INSERT INTO themes(name, display_name, primary_color, accent_color, font_family, featured, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
                  ON CONFLICT(name) DO UPDATE SET display_name = excluded.display_name, primary_color = excluded.primary_color,
                      accent_color = excluded.accent_color, font_family = excluded.font_family, featured = excluded.featured,
                      updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, stmt,
		theme.Name, theme.DisplayName, theme.PrimaryColor, theme.AccentColor, theme.FontFamily,
		boolToInt(theme.Featured), theme.CreatedAt, theme.UpdatedAt,
	)
	return err
}

func (r *themeRepo) Delete(ctx context.Context, id int64) error {
	return affectedOrNotFound(r.db.ExecContext(ctx, `DELETE FROM themes WHERE id = ?`, id))
}

func (r *themeRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.Theme, int64, error) {
	return listRows(ctx, r.lister, repository.ThemeSchema, "themes", themeColumns, q, scanTheme)
}

func scanTheme(row rowScanner) (*repository.Theme, error) {
	var (
		theme    repository.Theme
		featured int64
	)
	if err := row.Scan(&theme.ID, &theme.Name, &theme.DisplayName, &theme.PrimaryColor, &theme.AccentColor, &theme.FontFamily, &featured, &theme.CreatedAt, &theme.UpdatedAt); err != nil {
		return nil, err
	}
	theme.Featured = featured == 1
	return &theme, nil
}

func stampTimes(created, updated *int64) {
	if *created == 0 {
		*created = time.Now().Unix()
	}
	if *updated == 0 {
		*updated = *created
	}
}
