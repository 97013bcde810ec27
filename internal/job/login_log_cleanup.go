package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

// DefaultLoginLogRetention 登录日志默认保留 30 天。
const DefaultLoginLogRetention = 30 * 24 * time.Hour

// LoginLogCleanupJob prunes old login attempts.
type LoginLogCleanupJob struct {
	Logs      repository.LoginLogRepository
	Retention time.Duration
	Logger    *slog.Logger
	now       func() time.Time
}

// NewLoginLogCleanupJob creates the job; a non-positive retention uses the default.
func NewLoginLogCleanupJob(logs repository.LoginLogRepository, retention time.Duration, logger *slog.Logger) *LoginLogCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = DefaultLoginLogRetention
	}
	return &LoginLogCleanupJob{Logs: logs, Retention: retention, Logger: logger, now: time.Now}
}

func (j *LoginLogCleanupJob) Name() string { return "loginlog.cleanup" }

func (j *LoginLogCleanupJob) Run(ctx context.Context) error {
	if j == nil || j.Logs == nil {
		return fmt.Errorf("login log cleanup job dependencies not configured / 登录日志清理任务依赖未配置")
	}
	cutoff := j.now().Add(-j.Retention).Unix()
	deleted, err := j.Logs.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("login log cleanup: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("old login logs removed", "deleted_rows", deleted, "cutoff", cutoff)
	}
	return nil
}
