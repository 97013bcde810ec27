// Package notifier delivers outbound email.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// EmailRequest 描述一封待发送的邮件。
type EmailRequest struct {
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// Kind tags the request for logging, e.g. "inquiry" or "order_status".
	Kind string `json:"kind,omitempty"`
	// Attempts counts delivery runs that already failed for this request.
	Attempts int `json:"attempts,omitempty"`
}

// Validate 校验收件人与主题。
func (r EmailRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return fmt.Errorf("recipient is required / 收件人不能为空")
	}
	if strings.ContainsAny(r.To+r.ReplyTo+r.Subject, "\r\n") {
		return fmt.Errorf("header values must be single line / 邮件头不能包含换行")
	}
	return nil
}

// Service sends email.
type Service interface {
	SendEmail(ctx context.Context, req EmailRequest) error
}

// ErrNotImplemented 表示未配置真实邮件通道。
var ErrNotImplemented = errors.New("notifier: no mail transport configured / 未配置邮件通道")

// LoggerService logs emails instead of sending them.
type LoggerService struct {
	logger *slog.Logger
}

// NewLoggerService 创建仅记录日志的通知服务。
func NewLoggerService(logger *slog.Logger) *LoggerService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerService{logger: logger}
}

func (s *LoggerService) SendEmail(ctx context.Context, req EmailRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email notification", "to", req.To, "subject", req.Subject, "kind", req.Kind)
	return ErrNotImplemented
}
