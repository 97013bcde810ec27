// 文件路径: internal/api/middleware/auth.go
// 模块说明: 这是 internal 模块里的 auth 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// UserGuard ensures requests carry a valid bearer token.
func UserGuard(auth service.AuthService, translations *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				writeError(w, r, http.StatusServiceUnavailable, "error.internal", translations)
				return
			}
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, r, http.StatusUnauthorized, "error.unauthorized", translations)
				return
			}
			identity, err := auth.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrAccountDisabled) {
					writeError(w, r, http.StatusForbidden, "error.account_disabled", translations)
					return
				}
				writeError(w, r, http.StatusUnauthorized, "error.unauthorized", translations)
				return
			}
			ctx := requestctx.WithUserClaims(r.Context(), requestctx.UserClaims{
				ID:      identity.UserID,
				Email:   identity.Email,
				IsAdmin: identity.IsAdmin,
				BakerID: identity.BakerID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BakerGuard runs after UserGuard and requires the caller to own a storefront.
func BakerGuard(translations *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := requestctx.UserFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "error.unauthorized", translations)
				return
			}
			if claims.BakerID == 0 {
				writeError(w, r, http.StatusForbidden, "error.forbidden", translations)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminGuard runs after UserGuard and requires admin privileges.
func AdminGuard(translations *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := requestctx.UserFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "error.unauthorized", translations)
				return
			}
			if !claims.IsAdmin {
				writeError(w, r, http.StatusForbidden, "error.forbidden", translations)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return trimmed
}

// writeError answers with the same {"error": ...} body the handlers use.
func writeError(w http.ResponseWriter, r *http.Request, status int, key string, translations *i18n.Manager) {
	msg := key
	if translations != nil {
		msg = translations.Translate(requestctx.GetLanguage(r.Context()), key)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
