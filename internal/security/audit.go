// 文件路径: internal/security/audit.go
// 模块说明: 这是 internal 模块里的 audit 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package security

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Audit event kinds.
const (
	EventLogin         = "auth.login"
	EventLoginFailed   = "auth.login_failed"
	EventLogout        = "auth.logout"
	EventRegister      = "auth.register"
	EventPasswordReset = "user.password_reset"
	EventUserStatus    = "user.status"
	EventSettingChange = "setting.update"
)

// Event 表示一次安全相关行为。
type Event struct {
	Kind     string
	ActorID  int64
	IP       string
	UA       string
	Metadata map[string]any
	Occurred time.Time
}

// Recorder 记录安全事件。
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LoggerRecorder writes audit events to a slog.Logger.
type LoggerRecorder struct {
	logger *slog.Logger
}

// NewLoggerRecorder returns a recorder; a nil logger discards events.
func NewLoggerRecorder(logger *slog.Logger) *LoggerRecorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerRecorder{logger: logger.With("component", "audit")}
}

func (r *LoggerRecorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	attrs := []any{
		"kind", event.Kind,
		"actor_id", event.ActorID,
		"ip", event.IP,
		"ua", event.UA,
		"occurred", event.Occurred.Format(time.RFC3339),
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, "metadata", event.Metadata)
	}
	r.logger.InfoContext(ctx, "audit", attrs...)
}
