package service

import (
	"context"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/cache"
	"github.com/creamcroissant/bakehub/internal/notifier"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// ShowcaseService backs the public storefront pages.
type ShowcaseService interface {
	ListBakers(ctx context.Context, desc query.Descriptor) (*Page[*BakerView], error)
	Storefront(ctx context.Context, slug string) (*Storefront, error)
	Gallery(ctx context.Context, slug string, desc query.Descriptor) (*Page[*GalleryItemView], error)
	Themes(ctx context.Context, desc query.Descriptor) (*Page[*ThemeView], error)
	SubmitInquiry(ctx context.Context, slug string, input InquiryInput) (*InquiryReceipt, error)
}

// Storefront is everything a public bakery page needs in one response.
type Storefront struct {
	Baker    *BakerView         `json:"baker"`
	Theme    *ThemeView         `json:"theme,omitempty"`
	Featured []*GalleryItemView `json:"featured"`
}

// InquiryInput is a visitor's message to a baker. With RequestOrder set an
// order in the inquiry state is opened as well.
type InquiryInput struct {
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Phone        string `json:"phone" validate:"max=40"`
	Subject      string `json:"subject" validate:"max=160"`
	Message      string `json:"message" validate:"required,max=4000"`
	RequestOrder bool   `json:"request_order"`
	Category     string `json:"category" validate:"max=60"`
	Quantity     int    `json:"quantity" validate:"min=0,max=100000"`
	DueDate      int64  `json:"due_date" validate:"min=0"`
	Lang         string `json:"-"`
	ClientMeta   `json:"-"`
}

// InquiryReceipt 询价回执。
type InquiryReceipt struct {
	MessageID int64  `json:"message_id"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message"`
}

// ShowcaseOptions wires ShowcaseService.
type ShowcaseOptions struct {
	Store         repository.Store
	Notifier      notifier.Service
	I18n          *i18n.Manager
	Rate          *security.RateLimiter
	Cache         cache.Store
	Validator     *validate.Validator
	Bounds        query.Bounds
	InquiryLimit  int
	InquiryWindow time.Duration
	Now           func() time.Time
}

type showcaseService struct {
	store         repository.Store
	bakers        repository.BakerRepository
	themes        repository.ThemeRepository
	gallery       repository.GalleryRepository
	notifier      notifier.Service
	i18n          *i18n.Manager
	rate          *security.RateLimiter
	cache         cache.Store
	validator     *validate.Validator
	bounds        query.Bounds
	inquiryLimit  int
	inquiryWindow time.Duration
	now           func() time.Time
}

const (
	featuredLimit = 12
	// ShowcaseCacheNamespace holds cached public listings; admin theme edits purge it.
	ShowcaseCacheNamespace = "showcase"
	themesCacheTTL         = 5 * time.Minute
)

// NewShowcaseService 构造公开店铺服务。
func NewShowcaseService(opts ShowcaseOptions) ShowcaseService {
	s := &showcaseService{
		store:         opts.Store,
		bakers:        opts.Store.Bakers(),
		themes:        opts.Store.Themes(),
		gallery:       opts.Store.Gallery(),
		notifier:      opts.Notifier,
		i18n:          opts.I18n,
		rate:          opts.Rate,
		validator:     opts.Validator,
		bounds:        opts.Bounds,
		inquiryLimit:  opts.InquiryLimit,
		inquiryWindow: opts.InquiryWindow,
		now:           opts.Now,
	}
	if opts.Cache != nil {
		s.cache = opts.Cache.Namespace(ShowcaseCacheNamespace)
	}
	if s.inquiryLimit <= 0 {
		s.inquiryLimit = 5
	}
	if s.inquiryWindow <= 0 {
		s.inquiryWindow = 10 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

var publishedOnly = query.Scope{Column: "published", Value: 1}

func (s *showcaseService) ListBakers(ctx context.Context, desc query.Descriptor) (*Page[*BakerView], error) {
	items, total, err := s.bakers.List(ctx, repository.ListQuery{Descriptor: desc, Scopes: []query.Scope{publishedOnly}})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, publicBakerView), total, desc, s.bounds), nil
}

func (s *showcaseService) published(ctx context.Context, slug string) (*repository.Baker, error) {
	baker, err := s.bakers.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !baker.Published {
		return nil, ErrNotFound
	}
	return baker, nil
}

func (s *showcaseService) Storefront(ctx context.Context, slug string) (*Storefront, error) {
	baker, err := s.published(ctx, slug)
	if err != nil {
		return nil, err
	}
	front := &Storefront{Baker: publicBakerView(baker)}
	if theme, err := s.themes.FindByName(ctx, baker.ThemeName); err == nil {
		front.Theme = toThemeView(theme)
	}
	limit := featuredLimit
	featured, _, err := s.gallery.List(ctx, repository.ForBaker(baker.ID, query.Descriptor{
		Filter: map[string]string{"featured": "true"},
		Limit:  &limit,
	}))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	front.Featured = mapViews(featured, toGalleryItemView)
	return front, nil
}

func (s *showcaseService) Gallery(ctx context.Context, slug string, desc query.Descriptor) (*Page[*GalleryItemView], error) {
	baker, err := s.published(ctx, slug)
	if err != nil {
		return nil, err
	}
	return listGallery(ctx, s.gallery, baker.ID, desc, s.bounds)
}

func (s *showcaseService) Themes(ctx context.Context, desc query.Descriptor) (*Page[*ThemeView], error) {
	load := func(ctx context.Context) (*Page[*ThemeView], error) {
		items, total, err := s.themes.List(ctx, repository.ListQuery{Descriptor: desc})
		if err != nil {
			return nil, mapRepoErr(err)
		}
		return newPage(mapViews(items, toThemeView), total, desc, s.bounds), nil
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.Remember(ctx, s.cache, "themes?"+desc.Values().Encode(), themesCacheTTL, load)
}

func (s *showcaseService) SubmitInquiry(ctx context.Context, slug string, input InquiryInput) (*InquiryReceipt, error) {
	input.Name = sanitizeText(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = sanitizeText(input.Phone)
	input.Subject = sanitizeText(input.Subject)
	input.Message = sanitizeText(input.Message)
	input.Category = strings.ToLower(sanitizeText(input.Category))
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}

	baker, err := s.published(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.rate != nil {
		res, err := s.rate.Allow(ctx, security.Key("inquiry", baker.Slug, input.IP), s.inquiryLimit, s.inquiryWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			return nil, ErrRateLimited
		}
	}

	subject := input.Subject
	if subject == "" {
		subject = s.translate(input.Lang, "email.inquiry.subject", input.Name)
	}

	now := nowUnix(s.now)
	receipt := &InquiryReceipt{}
	// 客户、询价订单和留言要么全部写入，要么全部回滚，重试不会留下孤儿订单。
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		customer, err := findOrCreateCustomer(ctx, tx.Customers(), baker.ID, input.Name, input.Email, input.Phone, now)
		if err != nil {
			return err
		}
		customerID := customer.ID

		var orderID *int64
		if input.RequestOrder {
			order, err := createWithReference(ctx, tx.Orders(), &repository.Order{
				BakerID:     baker.ID,
				CustomerID:  &customerID,
				Title:       subject,
				Description: input.Message,
				Category:    input.Category,
				Status:      repository.OrderStatusInquiry,
				Quantity:    input.Quantity,
				DueDate:     input.DueDate,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return err
			}
			orderID = &order.ID
			receipt.Reference = order.Reference
		}

		msg, err := tx.Messages().Create(ctx, &repository.Message{
			BakerID:     baker.ID,
			CustomerID:  &customerID,
			OrderID:     orderID,
			SenderName:  input.Name,
			SenderEmail: input.Email,
			Subject:     subject,
			Body:        input.Message,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return mapRepoErr(err)
		}
		receipt.MessageID = msg.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt.Message = s.translate(input.Lang, "inquiry.received", input.Name, baker.BusinessName)

	s.notifyBaker(ctx, baker, input, subject, receipt.Reference)
	return receipt, nil
}

func (s *showcaseService) notifyBaker(ctx context.Context, baker *repository.Baker, input InquiryInput, subject, reference string) {
	if s.notifier == nil || baker.Email == "" {
		return
	}
	// delivery is queued; the stored message is the source of truth
	_ = s.notifier.SendEmail(ctx, notifier.EmailRequest{
		To:      baker.Email,
		ReplyTo: input.Email,
		Subject: subject,
		Body:    s.translate("", "email.inquiry.body", input.Name, input.Email, input.Message, reference),
		Kind:    "inquiry",
	})
}

func (s *showcaseService) translate(lang, key string, args ...any) string {
	if s.i18n == nil {
		return key
	}
	return s.i18n.Translate(lang, key, args...)
}
