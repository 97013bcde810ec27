package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/creamcroissant/bakehub/internal/notifier"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// OrderService manages a baker's orders.
type OrderService interface {
	List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*OrderView], error)
	Get(ctx context.Context, bakerID, id int64) (*OrderView, error)
	Create(ctx context.Context, bakerID int64, input OrderInput) (*OrderView, error)
	Update(ctx context.Context, bakerID, id int64, input OrderInput) (*OrderView, error)
	Transition(ctx context.Context, bakerID, id int64, status string) (*OrderView, error)
	Delete(ctx context.Context, bakerID, id int64) error
}

// OrderInput creates or replaces an order's editable fields.
type OrderInput struct {
	CustomerID  *int64 `json:"customer_id,omitempty" validate:"omitempty,min=1"`
	Title       string `json:"title" validate:"required,max=160"`
	Description string `json:"description" validate:"max=4000"`
	Category    string `json:"category" validate:"max=60"`
	Quantity    int    `json:"quantity" validate:"min=0,max=100000"`
	PriceCents  int64  `json:"price_cents" validate:"min=0"`
	DueDate     int64  `json:"due_date" validate:"min=0"`
	// Status is only honoured on create; later changes go through Transition.
	Status string `json:"status,omitempty" validate:"omitempty,oneof=inquiry pending confirmed"`
}

type orderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	notifier  notifier.Service
	i18n      *i18n.Manager
	bounds    query.Bounds
	validator *validate.Validator
	now       func() time.Time
}

// NewOrderService 构造订单服务。notify 为空时不发送状态邮件。
func NewOrderService(store repository.Store, notify notifier.Service, translations *i18n.Manager, bounds query.Bounds, validator *validate.Validator) OrderService {
	return &orderService{
		orders:    store.Orders(),
		customers: store.Customers(),
		notifier:  notify,
		i18n:      translations,
		bounds:    bounds,
		validator: validator,
		now:       time.Now,
	}
}

// newOrderReference returns a short human-friendly order number.
func newOrderReference() string {
	return "BH-" + strings.ToUpper(shortuuid.New()[:10])
}

func (s *orderService) List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*OrderView], error) {
	items, total, err := s.orders.List(ctx, repository.ForBaker(bakerID, desc))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toOrderView), total, desc, s.bounds), nil
}

func (s *orderService) Get(ctx context.Context, bakerID, id int64) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toOrderView(order), nil
}

func (s *orderService) Create(ctx context.Context, bakerID int64, input OrderInput) (*OrderView, error) {
	if err := s.check(ctx, bakerID, &input); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = repository.OrderStatusPending
	}
	now := nowUnix(s.now)
	order := &repository.Order{
		BakerID:     bakerID,
		CustomerID:  input.CustomerID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Status:      status,
		Quantity:    input.Quantity,
		PriceCents:  input.PriceCents,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := createWithReference(ctx, s.orders, order)
	if err != nil {
		return nil, err
	}
	return toOrderView(created), nil
}

const referenceAttempts = 3

// createWithReference retries only on the unlikely reference collision.
func createWithReference(ctx context.Context, orders repository.OrderRepository, order *repository.Order) (*repository.Order, error) {
	var err error
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		order.Reference = newOrderReference()
		var created *repository.Order
		created, err = orders.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
	}
	return nil, mapRepoErr(err)
}

func (s *orderService) Update(ctx context.Context, bakerID, id int64, input OrderInput) (*OrderView, error) {
	if err := s.check(ctx, bakerID, &input); err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	order.CustomerID = input.CustomerID
	order.Title = input.Title
	order.Description = input.Description
	order.Category = input.Category
	order.Quantity = input.Quantity
	order.PriceCents = input.PriceCents
	order.DueDate = input.DueDate
	order.UpdatedAt = nowUnix(s.now)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, mapRepoErr(err)
	}
	return toOrderView(order), nil
}

func (s *orderService) Transition(ctx context.Context, bakerID, id int64, status string) (*OrderView, error) {
	status = strings.TrimSpace(status)
	order, err := s.orders.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, status)
	}
	order.Status = status
	order.UpdatedAt = nowUnix(s.now)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, mapRepoErr(err)
	}
	s.notifyCustomer(ctx, order)
	return toOrderView(order), nil
}

func (s *orderService) Delete(ctx context.Context, bakerID, id int64) error {
	return mapRepoErr(s.orders.Delete(ctx, bakerID, id))
}

func (s *orderService) check(ctx context.Context, bakerID int64, input *OrderInput) error {
	input.Title = sanitizeText(input.Title)
	input.Description = sanitizeHTML(input.Description)
	input.Category = strings.ToLower(sanitizeText(input.Category))
	if err := checkInput(s.validator, input); err != nil {
		return err
	}
	if input.CustomerID != nil {
		if _, err := s.customers.FindByID(ctx, bakerID, *input.CustomerID); err != nil {
			return fmt.Errorf("%w: customer not found / 客户不存在", ErrInvalidInput)
		}
	}
	return nil
}

// notifyCustomer emails the customer about a status change when they left an address.
func (s *orderService) notifyCustomer(ctx context.Context, order *repository.Order) {
	if s.notifier == nil || s.i18n == nil || order.CustomerID == nil {
		return
	}
	customer, err := s.customers.FindByID(ctx, order.BakerID, *order.CustomerID)
	if err != nil || customer.Email == "" {
		return
	}
	lang := "en-US"
	_ = s.notifier.SendEmail(ctx, notifier.EmailRequest{
		To:      customer.Email,
		Subject: s.i18n.Translate(lang, "email.order_status.subject", order.Reference, order.Status),
		Body:    s.i18n.Translate(lang, "email.order_status.body", customer.Name, order.Title, order.Status),
		Kind:    "order_status",
	})
}
