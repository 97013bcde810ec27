// 文件路径: internal/repository/sqlite/token.go
// 模块说明: 这是 internal 模块里的 token 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

// tokenRepo stores issued refresh tokens.
type tokenRepo struct {
	db dbtx
}

func (r *tokenRepo) Create(ctx context.Context, token *repository.AccessToken) (*repository.AccessToken, error) {
	if token == nil {
		return nil, fmt.Errorf("access token 数据为空")
	}
	if token.UserID == 0 || strings.TrimSpace(token.RefreshToken) == "" {
		return nil, fmt.Errorf("userID 和 refresh token 不能为空")
	}
	if token.CreatedAt == 0 {
		token.CreatedAt = time.Now().Unix()
	}
	if token.UpdatedAt == 0 {
		token.UpdatedAt = token.CreatedAt
	}
	const stmt = `INSERT INTO access_tokens(user_id, refresh_token, refresh_expires_at, ip, user_agent, revoked, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		token.UserID,
		token.RefreshToken,
		token.RefreshExpiresAt,
		token.IP,
		token.UserAgent,
		boolToInt(token.Revoked),
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		token.ID = id
	}
	return token, nil
}

func (r *tokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*repository.AccessToken, error) {
	trimmed := strings.TrimSpace(refreshToken)
	if trimmed == "" {
		return nil, repository.ErrNotFound
	}
	const query = `SELECT id, user_id, refresh_token, refresh_expires_at, ip, user_agent, revoked, created_at, updated_at
                   FROM access_tokens WHERE refresh_token = ? LIMIT 1`
	var (
		rec     repository.AccessToken
		revoked int64
	)
	err := r.db.QueryRowContext(ctx, query, trimmed).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.RefreshToken,
		&rec.RefreshExpiresAt,
		&rec.IP,
		&rec.UserAgent,
		&revoked,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}
	rec.Revoked = revoked == 1
	return &rec, nil
}

func (r *tokenRepo) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	trimmed := strings.TrimSpace(refreshToken)
	if trimmed == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE refresh_token = ?`, trimmed)
	return err
}

func (r *tokenRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE user_id = ?`, userID)
	return err
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, before int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE refresh_expires_at < ? OR revoked = 1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
