// 文件路径: internal/job/send_notification.go
// 模块说明: 这是 internal 模块里的 send_notification 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/creamcroissant/bakehub/internal/async"
	"github.com/creamcroissant/bakehub/internal/notifier"
)

// DefaultMaxAttempts is how many job runs may fail for one email before it is abandoned.
const DefaultMaxAttempts = 5

// SendEmailJob 处理邮件通知队列。
type SendEmailJob struct {
	Queue      *async.NotificationQueue
	Notifier   notifier.Service
	Logger     *slog.Logger
	MaxRetries uint64
	// MaxAttempts caps the runs an email is retried across; requeues stop after it.
	MaxAttempts int
	// InitialInterval is the first backoff delay between attempts.
	InitialInterval time.Duration
}

// NewSendEmailJob 构造邮件通知任务。
func NewSendEmailJob(queue *async.NotificationQueue, svc notifier.Service, logger *slog.Logger, maxRetries uint64) *SendEmailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendEmailJob{
		Queue:           queue,
		Notifier:        svc,
		Logger:          logger,
		MaxRetries:      maxRetries,
		MaxAttempts:     DefaultMaxAttempts,
		InitialInterval: 500 * time.Millisecond,
	}
}

func (j *SendEmailJob) Name() string { return "notify.email" }

// Run drains the queue and delivers each email with exponential backoff.
// Emails still failing after the retries are put back for the next run
// until they reach MaxAttempts.
func (j *SendEmailJob) Run(ctx context.Context) error {
	if j == nil || j.Queue == nil || j.Notifier == nil {
		return fmt.Errorf("email notification job dependencies not configured / 邮件通知任务依赖未配置")
	}
	emails := j.Queue.DrainEmails()
	if len(emails) == 0 {
		return nil
	}

	var failed []notifier.EmailRequest
	var lastErr error
	sent, abandoned := 0, 0
	for i, req := range emails {
		if ctx.Err() != nil {
			failed = append(failed, emails[i:]...)
			lastErr = ctx.Err()
			break
		}
		err := backoff.Retry(func() error {
			err := j.Notifier.SendEmail(ctx, req)
			if errors.Is(err, notifier.ErrNotImplemented) {
				return backoff.Permanent(err)
			}
			return err
		}, j.policy(ctx))
		switch {
		case err == nil:
			sent++
		case errors.Is(err, notifier.ErrNotImplemented):
			j.Logger.Warn("email not delivered", "to", req.To, "kind", req.Kind, "reason", err)
		default:
			lastErr = err
			req.Attempts++
			if j.MaxAttempts > 0 && req.Attempts >= j.MaxAttempts {
				j.Logger.Error("email abandoned", "to", req.To, "kind", req.Kind, "attempts", req.Attempts, "error", err)
				abandoned++
				continue
			}
			j.Logger.Error("email delivery failed", "to", req.To, "kind", req.Kind, "attempts", req.Attempts, "error", err)
			failed = append(failed, req)
		}
	}
	j.Queue.RequeueEmails(failed)
	if sent > 0 {
		j.Logger.Info("email notifications sent", "count", sent)
	}
	if lastErr != nil {
		return fmt.Errorf("%d email(s) requeued, %d abandoned: %w", len(failed), abandoned, lastErr)
	}
	return nil
}

func (j *SendEmailJob) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if j.InitialInterval > 0 {
		exp.InitialInterval = j.InitialInterval
	}
	exp.MaxElapsedTime = time.Minute
	return backoff.WithContext(backoff.WithMaxRetries(exp, j.MaxRetries), ctx)
}
