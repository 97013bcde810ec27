package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// LanguageCookie persists an explicit ?lang= choice.
const LanguageCookie = "bakehub_lang"

// I18n middleware detects the user's preferred language and stores it in the context.
// Order: lang query, X-I18N-Lang header, cookie, Accept-Language.
func I18n(manager *i18n.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			explicit := strings.TrimSpace(r.URL.Query().Get("lang"))
			requested := explicit
			if requested == "" {
				requested = strings.TrimSpace(r.Header.Get("X-I18N-Lang"))
			}
			if requested == "" {
				if cookie, err := r.Cookie(LanguageCookie); err == nil {
					requested = cookie.Value
				}
			}
			if requested == "" {
				requested = r.Header.Get("Accept-Language")
			}

			lang := requestctx.DefaultLanguage
			if manager != nil {
				// Match understands both single tags and Accept-Language lists
				lang = manager.Match(requested)
			}
			ctx := requestctx.WithLanguage(r.Context(), lang)

			if explicit != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     LanguageCookie,
					Value:    lang,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
