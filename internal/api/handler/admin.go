// 文件路径: internal/api/handler/admin.go
// 模块说明: 这是 internal 模块里的 admin 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// AdminServices groups the admin panel services.
type AdminServices struct {
	Users    service.AdminUserService
	Catalog  service.AdminCatalogService
	Settings service.AdminSettingsService
	System   service.AdminSystemService
}

// AdminHandler exposes the admin endpoints. AdminGuard runs first.
type AdminHandler struct {
	svc  AdminServices
	i18n *i18n.Manager
}

func NewAdminHandler(svc AdminServices, i18n *i18n.Manager) *AdminHandler {
	return &AdminHandler{svc: svc, i18n: i18n}
}

func (h *AdminHandler) actorID(r *http.Request) int64 {
	claims, _ := requestctx.UserFromContext(r.Context())
	return claims.ID
}

func (h *AdminHandler) respond(w http.ResponseWriter, r *http.Request, action string, status int, data any, err error) {
	if err != nil {
		respondServiceError(w, r, action, err, h.i18n)
		return
	}
	respondJSON(w, status, map[string]any{"data": data})
}

// ---- users ----

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Users.List(r.Context(), listDescriptor(r))
	if err != nil {
		respondServiceError(w, r, "admin.users", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "admin.users.get", err, h.i18n)
		return
	}
	view, err := h.svc.Users.Get(r.Context(), id)
	h.respond(w, r, "admin.users.get", http.StatusOK, view, err)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input service.AdminUserInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "admin.users.create", err, h.i18n)
		return
	}
	view, err := h.svc.Users.Create(r.Context(), input)
	h.respond(w, r, "admin.users.create", http.StatusCreated, view, err)
}

type userStatusRequest struct {
	Active bool `json:"active"`
}

func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "admin.users.status", err, h.i18n)
		return
	}
	var payload userStatusRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "admin.users.status", err, h.i18n)
		return
	}
	view, err := h.svc.Users.SetStatus(r.Context(), h.actorID(r), id, payload.Active)
	h.respond(w, r, "admin.users.status", http.StatusOK, view, err)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "admin.users.password", err, h.i18n)
		return
	}
	var payload resetPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "admin.users.password", err, h.i18n)
		return
	}
	if err := h.svc.Users.ResetPassword(r.Context(), h.actorID(r), id, payload.Password); err != nil {
		respondServiceError(w, r, "admin.users.password", err, h.i18n)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- bakers ----

func (h *AdminHandler) ListBakers(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Catalog.ListBakers(r.Context(), listDescriptor(r))
	if err != nil {
		respondServiceError(w, r, "admin.bakers", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) SetBakerPublished(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "admin.bakers.publish", err, h.i18n)
		return
	}
	var payload publishRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "admin.bakers.publish", err, h.i18n)
		return
	}
	view, err := h.svc.Catalog.SetBakerPublished(r.Context(), id, payload.Published)
	h.respond(w, r, "admin.bakers.publish", http.StatusOK, view, err)
}

// ---- themes ----

func (h *AdminHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Catalog.ListThemes(r.Context(), listDescriptor(r))
	if err != nil {
		respondServiceError(w, r, "admin.themes", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var input service.ThemeInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "admin.themes.create", err, h.i18n)
		return
	}
	view, err := h.svc.Catalog.CreateTheme(r.Context(), input)
	h.respond(w, r, "admin.themes.create", http.StatusCreated, view, err)
}

func (h *AdminHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "admin.themes.update", err, h.i18n)
		return
	}
	var input service.ThemeInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "admin.themes.update", err, h.i18n)
		return
	}
	view, err := h.svc.Catalog.UpdateTheme(r.Context(), id, input)
	h.respond(w, r, "admin.themes.update", http.StatusOK, view, err)
}

func (h *AdminHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "admin.themes.delete", err, h.i18n)
		return
	}
	if err := h.svc.Catalog.DeleteTheme(r.Context(), id); err != nil {
		respondServiceError(w, r, "admin.themes.delete", err, h.i18n)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- settings ----

func (h *AdminHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Settings.List(r.Context())
	h.respond(w, r, "admin.settings", http.StatusOK, items, err)
}

func (h *AdminHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Settings.Get(r.Context(), chi.URLParam(r, "key"))
	h.respond(w, r, "admin.settings.get", http.StatusOK, view, err)
}

type settingRequest struct {
	Value string `json:"value"`
}

func (h *AdminHandler) SetSetting(w http.ResponseWriter, r *http.Request) {
	var payload settingRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "admin.settings.set", err, h.i18n)
		return
	}
	view, err := h.svc.Settings.Set(r.Context(), h.actorID(r), chi.URLParam(r, "key"), payload.Value)
	h.respond(w, r, "admin.settings.set", http.StatusOK, view, err)
}

// ---- system ----

func (h *AdminHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.System.SystemStatus(r.Context())
	h.respond(w, r, "admin.system.status", http.StatusOK, status, err)
}
