// 文件路径: internal/repository/sqlite/login_log.go
// 模块说明: 这是 internal 模块里的 login_log 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

// loginLogRepo persists login attempts into SQLite for auditing.
type loginLogRepo struct {
	db dbtx
}

func (r *loginLogRepo) Create(ctx context.Context, logEntry *repository.LoginLog) error {
	if logEntry == nil {
		return fmt.Errorf("login log entry is required / 登录日志条目不能为空")
	}
	if strings.TrimSpace(logEntry.Email) == "" {
		return fmt.Errorf("login log email is required / 登录日志邮箱不能为空")
	}
	created := logEntry.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	var userID any
	if logEntry.UserID != nil && *logEntry.UserID > 0 {
		userID = *logEntry.UserID
	}
	const stmt = `INSERT INTO login_logs(user_id, email, ip, user_agent, success, reason, created_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		userID,
		logEntry.Email,
		logEntry.IP,
		logEntry.UserAgent,
		boolToInt(logEntry.Success),
		logEntry.Reason,
		created,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		logEntry.ID = id
	}
	logEntry.CreatedAt = created
	return nil
}

func (r *loginLogRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*repository.LoginLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, user_id, email, ip, user_agent, success, reason, created_at
                   FROM login_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*repository.LoginLog
	for rows.Next() {
		var (
			entry   repository.LoginLog
			uid     sql.NullInt64
			success int64
		)
		if err := rows.Scan(&entry.ID, &uid, &entry.Email, &entry.IP, &entry.UserAgent, &success, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.UserID = nullableIntPtr(uid)
		entry.Success = success == 1
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

func (r *loginLogRepo) DeleteBefore(ctx context.Context, before int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_logs WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
