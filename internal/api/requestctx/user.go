// 文件路径: internal/api/requestctx/user.go
// 模块说明: 这是 internal 模块里的 user 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package requestctx

import "context"

// UserClaims is the authenticated caller attached by the auth guards.
type UserClaims struct {
	ID      int64
	Email   string
	IsAdmin bool
	// BakerID is zero for accounts that do not own a storefront.
	BakerID int64
}

type contextKey string

const userContextKey contextKey = "bakehub-user"

// I18nKey 用于在 context 中存储语言标识的 key 类型。
type I18nKey struct{}

// DefaultLanguage is used when no language was negotiated.
const DefaultLanguage = "en-US"

// WithLanguage 将语言标识附加到 context 中供下游使用。
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, I18nKey{}, lang)
}

// GetLanguage 从 context 中获取语言标识，若未设置则返回默认值 "en-US"。
func GetLanguage(ctx context.Context) string {
	if ctx == nil {
		return DefaultLanguage
	}
	if lang, ok := ctx.Value(I18nKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// WithUserClaims attaches user data to the context for downstream handlers.
func WithUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// UserFromContext fetches user claims; ok is false when no guard ran.
func UserFromContext(ctx context.Context) (UserClaims, bool) {
	if ctx == nil {
		return UserClaims{}, false
	}
	claims, ok := ctx.Value(userContextKey).(UserClaims)
	return claims, ok
}
