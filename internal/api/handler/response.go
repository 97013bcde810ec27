package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

// RespondErrorI18nAction answers with {"error": translated, "action": action}.
func RespondErrorI18nAction(ctx context.Context, w http.ResponseWriter, status int, action string, key string, i18nMgr *i18n.Manager, args ...interface{}) {
	if key == "" {
		key = action
	}
	lang := requestctx.GetLanguage(ctx)
	var msg string
	if i18nMgr != nil {
		msg = i18nMgr.Translate(lang, key, args...)
	} else {
		msg = key
	}
	resp := map[string]any{
		"error": msg,
	}
	if action != "" {
		resp["action"] = action
	}
	respondJSON(w, status, resp)
}

// RespondErrorI18n answers with a translated error and no action.
func RespondErrorI18n(ctx context.Context, w http.ResponseWriter, status int, key string, i18nMgr *i18n.Manager, args ...interface{}) {
	RespondErrorI18nAction(ctx, w, status, "", key, i18nMgr, args...)
}

type errorMapping struct {
	target error
	status int
	key    string
}

// 顺序很重要：更具体的 sentinel 放在前面。
var serviceErrors = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, "error.not_found"},
	{service.ErrInvalidQuery, http.StatusBadRequest, "error.invalid_query"},
	{service.ErrInvalidInput, http.StatusBadRequest, "error.invalid_input"},
	{service.ErrEmailExists, http.StatusConflict, "error.email_exists"},
	{service.ErrSlugTaken, http.StatusConflict, "error.slug_taken"},
	{service.ErrInvalidStatusTransition, http.StatusConflict, "error.invalid_status_transition"},
	{service.ErrConflict, http.StatusConflict, "error.conflict"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "error.invalid_credentials"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "error.unauthorized"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "error.unauthorized"},
	{service.ErrAccountDisabled, http.StatusForbidden, "error.account_disabled"},
	{service.ErrForbidden, http.StatusForbidden, "error.forbidden"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "error.rate_limited"},
	{service.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, "error.unsupported_media"},
	{service.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "error.payload_too_large"},
}

// statusFor maps a service error onto an HTTP status and i18n key.
func statusFor(err error) (int, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.status, m.key
		}
	}
	return http.StatusInternalServerError, "error.internal"
}

// respondServiceError translates a service error for the caller. Unknown
// errors are logged and reported as 500 without leaking details.
func respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error, i18nMgr *i18n.Manager) {
	status, key := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "action", action, "error", err)
	} else {
		slog.DebugContext(r.Context(), "request rejected", "action", action, "status", status, "error", err)
	}
	RespondErrorI18nAction(r.Context(), w, status, action, key, i18nMgr)
}
