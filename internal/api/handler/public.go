package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// PublicHandler serves the unauthenticated storefront API.
type PublicHandler struct {
	showcase service.ShowcaseService
	files    service.FileService
	i18n     *i18n.Manager
}

func NewPublicHandler(showcase service.ShowcaseService, files service.FileService, i18n *i18n.Manager) *PublicHandler {
	return &PublicHandler{showcase: showcase, files: files, i18n: i18n}
}

func (h *PublicHandler) ListBakers(w http.ResponseWriter, r *http.Request) {
	page, err := h.showcase.ListBakers(r.Context(), listDescriptor(r))
	if err != nil {
		respondServiceError(w, r, "public.bakers", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *PublicHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	front, err := h.showcase.Storefront(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, r, "public.storefront", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": front})
}

// Gallery lists one storefront's work, e.g. ?sort=-created_date&category=wedding&featured=true.
func (h *PublicHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	page, err := h.showcase.Gallery(r.Context(), chi.URLParam(r, "slug"), listDescriptor(r))
	if err != nil {
		respondServiceError(w, r, "public.gallery", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *PublicHandler) Themes(w http.ResponseWriter, r *http.Request) {
	page, err := h.showcase.Themes(r.Context(), listDescriptor(r))
	if err != nil {
		respondServiceError(w, r, "public.themes", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// SubmitInquiry 访客留言，可选同时创建询价订单。
func (h *PublicHandler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var input service.InquiryInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "public.inquiry", err, h.i18n)
		return
	}
	input.Lang = requestctx.GetLanguage(r.Context())
	input.ClientMeta = clientMeta(r)
	receipt, err := h.showcase.SubmitInquiry(r.Context(), chi.URLParam(r, "slug"), input)
	if err != nil {
		respondServiceError(w, r, "public.inquiry", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": receipt})
}

func (h *PublicHandler) File(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, false)
}

func (h *PublicHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, true)
}

func (h *PublicHandler) serveFile(w http.ResponseWriter, r *http.Request, thumbnail bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, "public.file", err, h.i18n)
		return
	}
	streamFile(w, r, h.files, 0, id, thumbnail, h.i18n)
}

// Translations serves the raw locale table for front-end bundles.
func (h *PublicHandler) Translations(w http.ResponseWriter, r *http.Request) {
	lang := strings.TrimSuffix(chi.URLParam(r, "lang"), ".json")
	translations := h.i18n.GetTranslations(lang)
	if translations == nil {
		RespondErrorI18n(r.Context(), w, http.StatusNotFound, "error.not_found", h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, translations)
}

// streamFile is shared by the public and baker file endpoints. Stored objects
// never change, so the id and variant make a stable ETag.
func streamFile(w http.ResponseWriter, r *http.Request, files service.FileService, bakerID, id int64, thumbnail bool, i18nMgr *i18n.Manager) {
	variant := "o"
	if thumbnail {
		variant = "t"
	}
	obj, view, err := files.Open(r.Context(), bakerID, id, thumbnail)
	if err != nil {
		respondServiceError(w, r, "file.open", err, i18nMgr)
		return
	}
	defer obj.Body.Close()

	if notModified(w, r, formatETag(fmt.Sprintf("%d-%s-%d", view.ID, variant, view.CreatedAt))) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = view.MimeType
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		slog.WarnContext(r.Context(), "file stream interrupted", "file_id", id, "error", err)
	}
}
