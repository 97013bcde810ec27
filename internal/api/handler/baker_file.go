package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/creamcroissant/bakehub/internal/service"
)

// multipartMemory 超出部分由 net/http 落盘到临时文件。
const multipartMemory = 8 << 20

const uploadField = "file"

func (h *BakerHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	page, err := h.svc.Files.List(r.Context(), bakerID, listDescriptor(r))
	h.respondPage(w, r, "baker.files", page, err)
}

// UploadFile accepts multipart/form-data with a single "file" part.
func (h *BakerHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondServiceError(w, r, "baker.files.upload", service.ErrPayloadTooLarge, h.i18n)
			return
		}
		respondServiceError(w, r, "baker.files.upload", errors.Join(service.ErrInvalidInput, err), h.i18n)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	part, header, err := r.FormFile(uploadField)
	if err != nil {
		respondServiceError(w, r, "baker.files.upload", errors.Join(service.ErrInvalidInput, err), h.i18n)
		return
	}
	defer part.Close()

	view, err := h.svc.Files.Upload(r.Context(), bakerID, service.UploadInput{
		Name: filepath.Base(header.Filename),
		Body: part,
	})
	h.respond(w, r, "baker.files.upload", http.StatusCreated, view, err)
}

func (h *BakerHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.files.delete")
	if !ok {
		return
	}
	h.respondDeleted(w, r, "baker.files.delete", h.svc.Files.Delete(r.Context(), bakerID, id))
}

// DownloadFile lets the owner fetch files even while the storefront is unpublished.
func (h *BakerHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.files.download")
	if !ok {
		return
	}
	streamFile(w, r, h.svc.Files, bakerID, id, r.URL.Query().Get("variant") == "thumbnail", h.i18n)
}
