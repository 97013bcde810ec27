package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// CustomerService manages a baker's customer book.
type CustomerService interface {
	List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*CustomerView], error)
	Get(ctx context.Context, bakerID, id int64) (*CustomerView, error)
	Create(ctx context.Context, bakerID int64, input CustomerInput) (*CustomerView, error)
	Update(ctx context.Context, bakerID, id int64, input CustomerInput) (*CustomerView, error)
	Delete(ctx context.Context, bakerID, id int64) error
}

// CustomerInput 客户资料。
type CustomerInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Phone string `json:"phone" validate:"max=40"`
	Notes string `json:"notes" validate:"max=4000"`
}

func (in *CustomerInput) normalize() {
	in.Name = sanitizeText(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = sanitizeText(in.Phone)
	in.Notes = sanitizeHTML(in.Notes)
}

type customerService struct {
	customers repository.CustomerRepository
	bounds    query.Bounds
	validator *validate.Validator
	now       func() time.Time
}

// NewCustomerService 构造客户服务。
func NewCustomerService(store repository.Store, bounds query.Bounds, validator *validate.Validator) CustomerService {
	return &customerService{customers: store.Customers(), bounds: bounds, validator: validator, now: time.Now}
}

func (s *customerService) List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*CustomerView], error) {
	items, total, err := s.customers.List(ctx, repository.ForBaker(bakerID, desc))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toCustomerView), total, desc, s.bounds), nil
}

func (s *customerService) Get(ctx context.Context, bakerID, id int64) (*CustomerView, error) {
	c, err := s.customers.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toCustomerView(c), nil
}

func (s *customerService) Create(ctx context.Context, bakerID int64, input CustomerInput) (*CustomerView, error) {
	input.normalize()
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}
	now := nowUnix(s.now)
	created, err := s.customers.Create(ctx, &repository.Customer{
		BakerID:   bakerID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toCustomerView(created), nil
}

func (s *customerService) Update(ctx context.Context, bakerID, id int64, input CustomerInput) (*CustomerView, error) {
	input.normalize()
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}
	c, err := s.customers.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	c.Name, c.Email, c.Phone, c.Notes = input.Name, input.Email, input.Phone, input.Notes
	c.UpdatedAt = nowUnix(s.now)
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}
	return toCustomerView(c), nil
}

func (s *customerService) Delete(ctx context.Context, bakerID, id int64) error {
	return mapRepoErr(s.customers.Delete(ctx, bakerID, id))
}

// findOrCreateCustomer matches an inquiry sender to an existing customer by email.
func findOrCreateCustomer(ctx context.Context, customers repository.CustomerRepository, bakerID int64, name, email, phone string, now int64) (*repository.Customer, error) {
	if email != "" {
		existing, err := customers.FindByEmail(ctx, bakerID, email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	created, err := customers.Create(ctx, &repository.Customer{
		BakerID:   bakerID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, repository.ErrConflict) && email != "" {
		// a concurrent inquiry created the same customer first
		existing, findErr := customers.FindByEmail(ctx, bakerID, email)
		if findErr == nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return created, nil
}
