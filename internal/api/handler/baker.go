package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/bakehub/internal/api/requestctx"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

// BakerServices groups what the dashboard endpoints need.
type BakerServices struct {
	Bakers    service.BakerService
	Customers service.CustomerService
	Orders    service.OrderService
	Gallery   service.GalleryService
	Files     service.FileService
	Messages  service.MessageService
	Entities  service.EntityService
}

// BakerHandler serves the authenticated dashboard. Every call is scoped to
// the caller's own bakery; ids from other tenants answer 404.
type BakerHandler struct {
	svc  BakerServices
	i18n *i18n.Manager
}

func NewBakerHandler(svc BakerServices, i18n *i18n.Manager) *BakerHandler {
	return &BakerHandler{svc: svc, i18n: i18n}
}

// bakerID reads the tenant set by BakerGuard.
func (h *BakerHandler) bakerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := requestctx.UserFromContext(r.Context())
	if !ok || claims.BakerID == 0 {
		RespondErrorI18n(r.Context(), w, http.StatusForbidden, "error.forbidden", h.i18n)
		return 0, false
	}
	return claims.BakerID, true
}

// scoped resolves the tenant and the {id} path parameter together.
func (h *BakerHandler) scoped(w http.ResponseWriter, r *http.Request, action string) (int64, int64, bool) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return 0, 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, action, err, h.i18n)
		return 0, 0, false
	}
	return bakerID, id, true
}

func (h *BakerHandler) respond(w http.ResponseWriter, r *http.Request, action string, status int, data any, err error) {
	if err != nil {
		respondServiceError(w, r, action, err, h.i18n)
		return
	}
	respondJSON(w, status, map[string]any{"data": data})
}

func (h *BakerHandler) respondPage(w http.ResponseWriter, r *http.Request, action string, page any, err error) {
	if err != nil {
		respondServiceError(w, r, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *BakerHandler) respondDeleted(w http.ResponseWriter, r *http.Request, action string, err error) {
	if err != nil {
		respondServiceError(w, r, action, err, h.i18n)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- profile ----

func (h *BakerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Bakers.Profile(r.Context(), bakerID)
	h.respond(w, r, "baker.profile", http.StatusOK, view, err)
}

func (h *BakerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	var input service.ProfileInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.profile.update", err, h.i18n)
		return
	}
	view, err := h.svc.Bakers.UpdateProfile(r.Context(), bakerID, input)
	h.respond(w, r, "baker.profile.update", http.StatusOK, view, err)
}

type publishRequest struct {
	Published bool `json:"published"`
}

func (h *BakerHandler) Publish(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	var payload publishRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "baker.publish", err, h.i18n)
		return
	}
	view, err := h.svc.Bakers.SetPublished(r.Context(), bakerID, payload.Published)
	h.respond(w, r, "baker.publish", http.StatusOK, view, err)
}

func (h *BakerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Bakers.Stats(r.Context(), bakerID)
	h.respond(w, r, "baker.stats", http.StatusOK, stats, err)
}

// ---- customers ----

func (h *BakerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	page, err := h.svc.Customers.List(r.Context(), bakerID, listDescriptor(r))
	h.respondPage(w, r, "baker.customers", page, err)
}

func (h *BakerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.customers.get")
	if !ok {
		return
	}
	view, err := h.svc.Customers.Get(r.Context(), bakerID, id)
	h.respond(w, r, "baker.customers.get", http.StatusOK, view, err)
}

func (h *BakerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	var input service.CustomerInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.customers.create", err, h.i18n)
		return
	}
	view, err := h.svc.Customers.Create(r.Context(), bakerID, input)
	h.respond(w, r, "baker.customers.create", http.StatusCreated, view, err)
}

func (h *BakerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.customers.update")
	if !ok {
		return
	}
	var input service.CustomerInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.customers.update", err, h.i18n)
		return
	}
	view, err := h.svc.Customers.Update(r.Context(), bakerID, id, input)
	h.respond(w, r, "baker.customers.update", http.StatusOK, view, err)
}

func (h *BakerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.customers.delete")
	if !ok {
		return
	}
	h.respondDeleted(w, r, "baker.customers.delete", h.svc.Customers.Delete(r.Context(), bakerID, id))
}

// ---- orders ----

func (h *BakerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	page, err := h.svc.Orders.List(r.Context(), bakerID, listDescriptor(r))
	h.respondPage(w, r, "baker.orders", page, err)
}

func (h *BakerHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.orders.get")
	if !ok {
		return
	}
	view, err := h.svc.Orders.Get(r.Context(), bakerID, id)
	h.respond(w, r, "baker.orders.get", http.StatusOK, view, err)
}

func (h *BakerHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	var input service.OrderInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.orders.create", err, h.i18n)
		return
	}
	view, err := h.svc.Orders.Create(r.Context(), bakerID, input)
	h.respond(w, r, "baker.orders.create", http.StatusCreated, view, err)
}

func (h *BakerHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.orders.update")
	if !ok {
		return
	}
	var input service.OrderInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.orders.update", err, h.i18n)
		return
	}
	view, err := h.svc.Orders.Update(r.Context(), bakerID, id, input)
	h.respond(w, r, "baker.orders.update", http.StatusOK, view, err)
}

type statusRequest struct {
	Status string `json:"status"`
}

// TransitionOrder moves an order along its lifecycle; illegal moves answer 409.
func (h *BakerHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.orders.status")
	if !ok {
		return
	}
	var payload statusRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondServiceError(w, r, "baker.orders.status", err, h.i18n)
		return
	}
	view, err := h.svc.Orders.Transition(r.Context(), bakerID, id, payload.Status)
	h.respond(w, r, "baker.orders.status", http.StatusOK, view, err)
}

func (h *BakerHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.orders.delete")
	if !ok {
		return
	}
	h.respondDeleted(w, r, "baker.orders.delete", h.svc.Orders.Delete(r.Context(), bakerID, id))
}

// ---- gallery ----

func (h *BakerHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	page, err := h.svc.Gallery.List(r.Context(), bakerID, listDescriptor(r))
	h.respondPage(w, r, "baker.gallery", page, err)
}

func (h *BakerHandler) GetGalleryItem(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.gallery.get")
	if !ok {
		return
	}
	view, err := h.svc.Gallery.Get(r.Context(), bakerID, id)
	h.respond(w, r, "baker.gallery.get", http.StatusOK, view, err)
}

func (h *BakerHandler) CreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	var input service.GalleryInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.gallery.create", err, h.i18n)
		return
	}
	view, err := h.svc.Gallery.Create(r.Context(), bakerID, input)
	h.respond(w, r, "baker.gallery.create", http.StatusCreated, view, err)
}

func (h *BakerHandler) UpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.gallery.update")
	if !ok {
		return
	}
	var input service.GalleryInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, "baker.gallery.update", err, h.i18n)
		return
	}
	view, err := h.svc.Gallery.Update(r.Context(), bakerID, id, input)
	h.respond(w, r, "baker.gallery.update", http.StatusOK, view, err)
}

func (h *BakerHandler) DeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.gallery.delete")
	if !ok {
		return
	}
	h.respondDeleted(w, r, "baker.gallery.delete", h.svc.Gallery.Delete(r.Context(), bakerID, id))
}

// ---- messages ----

func (h *BakerHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	page, err := h.svc.Messages.List(r.Context(), bakerID, listDescriptor(r))
	h.respondPage(w, r, "baker.messages", page, err)
}

func (h *BakerHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.messages.get")
	if !ok {
		return
	}
	view, err := h.svc.Messages.Get(r.Context(), bakerID, id)
	h.respond(w, r, "baker.messages.get", http.StatusOK, view, err)
}

type readRequest struct {
	Read *bool `json:"read"`
}

// MarkRead defaults to read=true when the body omits the flag.
func (h *BakerHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.messages.read")
	if !ok {
		return
	}
	read := true
	if r.ContentLength != 0 {
		var payload readRequest
		if err := decodeJSON(r, &payload); err != nil {
			respondServiceError(w, r, "baker.messages.read", err, h.i18n)
			return
		}
		if payload.Read != nil {
			read = *payload.Read
		}
	}
	view, err := h.svc.Messages.MarkRead(r.Context(), bakerID, id, read)
	h.respond(w, r, "baker.messages.read", http.StatusOK, view, err)
}

func (h *BakerHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	bakerID, id, ok := h.scoped(w, r, "baker.messages.delete")
	if !ok {
		return
	}
	h.respondDeleted(w, r, "baker.messages.delete", h.svc.Messages.Delete(r.Context(), bakerID, id))
}

// ---- entities ----

// ListEntity is the generic list endpoint: /entities/{entity}?sort=...&limit=...
func (h *BakerHandler) ListEntity(w http.ResponseWriter, r *http.Request) {
	bakerID, ok := h.bakerID(w, r)
	if !ok {
		return
	}
	page, err := h.svc.Entities.List(r.Context(), bakerID, chi.URLParam(r, "entity"), listDescriptor(r))
	h.respondPage(w, r, "baker.entities", page, err)
}

func (h *BakerHandler) DescribeEntity(w http.ResponseWriter, r *http.Request) {
	desc, err := h.svc.Entities.Describe(chi.URLParam(r, "entity"))
	h.respond(w, r, "baker.entities.describe", http.StatusOK, desc, err)
}

func (h *BakerHandler) Entities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"data": h.svc.Entities.Entities()})
}
