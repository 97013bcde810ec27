package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// BakerService manages the signed-in baker's own storefront.
type BakerService interface {
	Profile(ctx context.Context, bakerID int64) (*BakerView, error)
	UpdateProfile(ctx context.Context, bakerID int64, input ProfileInput) (*BakerView, error)
	SetPublished(ctx context.Context, bakerID int64, published bool) (*BakerView, error)
	Stats(ctx context.Context, bakerID int64) (*DashboardStats, error)
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Slug         *string `json:"slug,omitempty" validate:"omitempty,slug,max=60"`
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,min=1,max=120"`
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=4000"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=120"`
	ThemeName    *string `json:"theme_name,omitempty" validate:"omitempty,max=40"`
	LogoFileID   *int64  `json:"logo_file_id,omitempty" validate:"omitempty,min=0"`
}

// DashboardStats 仪表盘统计。
type DashboardStats struct {
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	OpenOrders     int64            `json:"open_orders"`
	Customers      int64            `json:"customers"`
	GalleryItems   int64            `json:"gallery_items"`
	UnreadMessages int64            `json:"unread_messages"`
}

type bakerService struct {
	bakers    repository.BakerRepository
	themes    repository.ThemeRepository
	files     repository.FileRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	gallery   repository.GalleryRepository
	messages  repository.MessageRepository
	validator *validate.Validator
	now       func() time.Time
}

// NewBakerService 构造店铺资料服务。
func NewBakerService(store repository.Store, validator *validate.Validator) BakerService {
	return &bakerService{
		bakers:    store.Bakers(),
		themes:    store.Themes(),
		files:     store.Files(),
		orders:    store.Orders(),
		customers: store.Customers(),
		gallery:   store.Gallery(),
		messages:  store.Messages(),
		validator: validator,
		now:       time.Now,
	}
}

func (s *bakerService) Profile(ctx context.Context, bakerID int64) (*BakerView, error) {
	baker, err := s.bakers.FindByID(ctx, bakerID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toBakerView(baker), nil
}

func (s *bakerService) UpdateProfile(ctx context.Context, bakerID int64, input ProfileInput) (*BakerView, error) {
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}
	baker, err := s.bakers.FindByID(ctx, bakerID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if input.Slug != nil && *input.Slug != baker.Slug {
		if other, err := s.bakers.FindBySlug(ctx, *input.Slug); err == nil && other.ID != baker.ID {
			return nil, ErrSlugTaken
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		baker.Slug = *input.Slug
	}
	if input.ThemeName != nil {
		name := strings.TrimSpace(*input.ThemeName)
		if _, err := s.themes.FindByName(ctx, name); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown theme %q / 主题不存在", ErrInvalidInput, name)
			}
			return nil, err
		}
		baker.ThemeName = name
	}
	if input.LogoFileID != nil {
		if *input.LogoFileID == 0 {
			baker.LogoFileID = nil
		} else {
			file, err := s.files.FindByID(ctx, *input.LogoFileID)
			if err != nil || file.BakerID != baker.ID {
				return nil, fmt.Errorf("%w: logo file not found / 店铺标志文件不存在", ErrInvalidInput)
			}
			id := file.ID
			baker.LogoFileID = &id
		}
	}
	if input.BusinessName != nil {
		name := sanitizeText(*input.BusinessName)
		if name == "" {
			return nil, fmt.Errorf("%w: business name required / 店铺名称不能为空", ErrInvalidInput)
		}
		baker.BusinessName = name
	}
	if input.Bio != nil {
		baker.Bio = sanitizeHTML(*input.Bio)
	}
	if input.Phone != nil {
		baker.Phone = sanitizeText(*input.Phone)
	}
	if input.Email != nil {
		baker.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Location != nil {
		baker.Location = sanitizeText(*input.Location)
	}

	baker.UpdatedAt = nowUnix(s.now)
	if err := s.bakers.Update(ctx, baker); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugTaken
		}
		return nil, mapRepoErr(err)
	}
	return toBakerView(baker), nil
}

func (s *bakerService) SetPublished(ctx context.Context, bakerID int64, published bool) (*BakerView, error) {
	baker, err := s.bakers.FindByID(ctx, bakerID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	baker.Published = published
	baker.UpdatedAt = nowUnix(s.now)
	if err := s.bakers.Update(ctx, baker); err != nil {
		return nil, mapRepoErr(err)
	}
	return toBakerView(baker), nil
}

func (s *bakerService) Stats(ctx context.Context, bakerID int64) (*DashboardStats, error) {
	counts, err := s.orders.CountByStatus(ctx, bakerID)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{OrdersByStatus: make(map[string]int64, len(counts))}
	for _, c := range counts {
		stats.OrdersByStatus[c.Status] = c.Count
		if !isTerminalStatus(c.Status) {
			stats.OpenOrders += c.Count
		}
	}

	// a one-row page is enough to read the totals
	one := 1
	totalOnly := repository.ForBaker(bakerID, query.Descriptor{Limit: &one})
	if _, stats.Customers, err = s.customers.List(ctx, totalOnly); err != nil {
		return nil, err
	}
	if _, stats.GalleryItems, err = s.gallery.List(ctx, totalOnly); err != nil {
		return nil, err
	}
	if stats.UnreadMessages, err = s.messages.CountUnread(ctx, bakerID); err != nil {
		return nil, err
	}
	return stats, nil
}
