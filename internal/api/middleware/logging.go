// 文件路径: internal/api/middleware/logging.go
// 模块说明: 这是 internal 模块里的 logging 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// LoggingConfig 访问日志配置。
type LoggingConfig struct {
	Logger        *slog.Logger
	SlowThreshold time.Duration
	SkipPaths     []string
}

// StructuredLogger writes one access log line per request and echoes the request id.
func StructuredLogger(cfg LoggingConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = 500 * time.Millisecond
	}
	skip := pathSet(cfg.SkipPaths)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			if requestID != "" {
				ww.Header().Set("X-Request-ID", requestID)
			}

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", elapsed),
				slog.String("remote_addr", remoteHost(r)),
				slog.Int("bytes", ww.BytesWritten()),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
				// storefront 请求带上面包店 slug，方便按店铺排查。
				if slug := rctx.URLParam("slug"); slug != "" {
					attrs = append(attrs, slog.String("baker", slug))
				}
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", r.URL.RawQuery))
			}

			level, msg := accessLevel(status, elapsed, cfg.SlowThreshold)
			if msg == "slow request" {
				attrs = append(attrs, slog.Duration("slow_threshold", cfg.SlowThreshold))
			}
			cfg.Logger.LogAttrs(r.Context(), level, msg, attrs...)
		})
	}
}

func accessLevel(status int, elapsed, slow time.Duration) (slog.Level, string) {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError, "request failed"
	case status >= http.StatusBadRequest:
		return slog.LevelWarn, "request rejected"
	case elapsed > slow:
		return slog.LevelWarn, "slow request"
	}
	return slog.LevelInfo, "request completed"
}
