// 文件路径: internal/repository/sqlite/user.go
// 模块说明: 这是 internal 模块里的 user 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type userRepo struct {
	db     dbtx
	lister *lister
}

const userColumns = `id, email, password, name, is_admin, status, last_login_at, created_at, updated_at`

func (r *userRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	return user, mapNoRows(err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalized)
	user, err := scanUser(row)
	return user, mapNoRows(err)
}

func (r *userRepo) Create(ctx context.Context, user *repository.User) (*repository.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	const stmt = `INSERT INTO users(email, password, name, is_admin, status, last_login_at, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		user.Email,
		user.Password,
		user.Name,
		boolToInt(user.IsAdmin),
		user.Status,
		optionalInt64(user.LastLoginAt),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		user.ID = id
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *repository.User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	const stmt = `UPDATE users
                  SET email = ?, password = ?, name = ?, is_admin = ?, status = ?, last_login_at = ?, updated_at = ?
                  WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Password,
		user.Name,
		boolToInt(user.IsAdmin),
		user.Status,
		optionalInt64(user.LastLoginAt),
		user.UpdatedAt,
		user.ID,
	)
	return affectedOrNotFound(res, err)
}

func (r *userRepo) List(ctx context.Context, q repository.ListQuery) ([]*repository.User, int64, error) {
	return listRows(ctx, r.lister, repository.UserSchema, "users", userColumns, q, scanUser)
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

func scanUser(row rowScanner) (*repository.User, error) {
	var (
		user      repository.User
		isAdmin   int64
		lastLogin sql.NullInt64
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &isAdmin, &user.Status, &lastLogin, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin == 1
	user.LastLoginAt = nullableIntPtr(lastLogin)
	return &user, nil
}
