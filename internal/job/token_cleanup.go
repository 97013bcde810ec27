package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
)

// TokenCleanupJob deletes refresh tokens past their expiry.
type TokenCleanupJob struct {
	Tokens repository.TokenRepository
	Logger *slog.Logger
	now    func() time.Time
}

// NewTokenCleanupJob 构造过期令牌清理任务。
func NewTokenCleanupJob(tokens repository.TokenRepository, logger *slog.Logger) *TokenCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenCleanupJob{Tokens: tokens, Logger: logger, now: time.Now}
}

func (j *TokenCleanupJob) Name() string { return "tokens.cleanup" }

func (j *TokenCleanupJob) Run(ctx context.Context) error {
	if j == nil || j.Tokens == nil {
		return fmt.Errorf("token cleanup job dependencies not configured / 令牌清理任务依赖未配置")
	}
	deleted, err := j.Tokens.DeleteExpired(ctx, j.now().Unix())
	if err != nil {
		return fmt.Errorf("token cleanup: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("expired refresh tokens removed", "deleted_rows", deleted)
	}
	return nil
}
