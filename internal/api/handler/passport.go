// 文件路径: internal/api/handler/passport.go
// 模块说明: 这是 internal 模块里的 passport 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package handler

import (
	"net/http"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// PassportHandler handles auth/registration endpoints.
type PassportHandler struct {
	auth     service.AuthService
	register service.RegistrationService
	i18n     *i18n.Manager
}

func NewPassportHandler(auth service.AuthService, register service.RegistrationService, i18n *i18n.Manager) *PassportHandler {
	return &PassportHandler{auth: auth, register: register, i18n: i18n}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register 注册账号并同时开通店铺，成功后直接返回登录令牌。
func (h *PassportHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "passport.register", err, h.i18n)
		return
	}
	input.ClientMeta = clientMeta(r)
	result, err := h.register.Register(r.Context(), input)
	if err != nil {
		respondServiceError(w, r, "passport.register", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": result})
}

func (h *PassportHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "passport.login", err, h.i18n)
		return
	}
	input.ClientMeta = clientMeta(r)
	result, err := h.auth.Login(r.Context(), input)
	if err != nil {
		respondServiceError(w, r, "passport.login", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *PassportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "passport.refresh", err, h.i18n)
		return
	}
	result, err := h.auth.Refresh(r.Context(), payload.RefreshToken, clientMeta(r))
	if err != nil {
		respondServiceError(w, r, "passport.refresh", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

// Logout revokes the refresh token; unknown tokens are not an error.
func (h *PassportHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "passport.logout", err, h.i18n)
		return
	}
	if err := h.auth.Logout(r.Context(), payload.RefreshToken); err != nil {
		respondServiceError(w, r, "passport.logout", err, h.i18n)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me runs behind UserGuard.
func (h *PassportHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requestctx.UserFromContext(r.Context())
	if !ok {
		RespondErrorI18n(r.Context(), w, http.StatusUnauthorized, "error.unauthorized", h.i18n)
		return
	}
	account, err := h.auth.Me(r.Context(), claims.ID)
	if err != nil {
		respondServiceError(w, r, "passport.me", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": account})
}
