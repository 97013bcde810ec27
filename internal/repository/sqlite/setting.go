// 文件路径: internal/repository/sqlite/setting.go
// 模块说明: 这是 internal 模块里的 setting 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"context"

	"github.com/creamcroissant/bakehub/internal/repository"
)

type settingRepo struct {
	db dbtx
}

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	const query = `SELECT key, value, category, updated_at FROM settings WHERE key = ?`
	var s repository.Setting
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &s, nil
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	const stmt = `INSERT INTO settings(key, value, category, updated_at) VALUES(?, ?, ?, ?)
                  ON CONFLICT(key) DO UPDATE SET value = excluded.value, category = excluded.category, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, stmt, setting.Key, setting.Value, setting.Category, setting.UpdatedAt)
	return err
}

func (r *settingRepo) List(ctx context.Context) ([]*repository.Setting, error) {
	const query = `SELECT key, value, category, updated_at FROM settings ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Setting
	for rows.Next() {
		var s repository.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
