// 文件路径: internal/service/register.go
// 模块说明: 这是 internal 模块里的 register 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/support/hash"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// RegistrationService signs up a baker: one user plus one storefront.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
}

// RegisterInput is the sign-up payload. Slug defaults to one derived from BusinessName.
type RegisterInput struct {
	Email        string `json:"email" validate:"required,email,max=254"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Name         string `json:"name" validate:"required,max=80"`
	BusinessName string `json:"business_name" validate:"required,max=120"`
	Slug         string `json:"slug,omitempty" validate:"omitempty,slug,max=60"`
	ThemeName    string `json:"theme_name,omitempty" validate:"omitempty,max=40"`
	ClientMeta   `json:"-"`
}

const (
	settingRegistrationOpen = "registration_enabled"
	defaultThemeName        = "classic"
	maxSlugAttempts         = 20
)

type registrationService struct {
	store     repository.Store
	users     repository.UserRepository
	bakers    repository.BakerRepository
	themes    repository.ThemeRepository
	settings  repository.SettingRepository
	hasher    hash.Hasher
	auth      AuthService
	audit     security.Recorder
	validator *validate.Validator
	now       func() time.Time
}

// NewRegistrationService wires the sign-up flow.
func NewRegistrationService(store repository.Store, hasher hash.Hasher, auth AuthService, audit security.Recorder, validator *validate.Validator) RegistrationService {
	return &registrationService{
		store:     store,
		users:     store.Users(),
		bakers:    store.Bakers(),
		themes:    store.Themes(),
		settings:  store.Settings(),
		hasher:    hasher,
		auth:      auth,
		audit:     audit,
		validator: validator,
		now:       time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if !boolSetting(ctx, s.settings, settingRegistrationOpen, true) {
		return nil, fmt.Errorf("%w: registration closed / 注册已关闭", ErrForbidden)
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = sanitizeText(input.Name)
	input.BusinessName = sanitizeText(input.BusinessName)
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	themeName := strings.TrimSpace(input.ThemeName)
	if themeName == "" {
		themeName = defaultThemeName
	}
	if _, err := s.themes.FindByName(ctx, themeName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown theme %q / 主题不存在", ErrInvalidInput, themeName)
		}
		return nil, err
	}

	slug, err := s.pickSlug(ctx, input.Slug, input.BusinessName)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	// 账号与店铺一起提交，避免留下没有店铺的账号。
	var user *repository.User
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		created, err := tx.Users().Create(ctx, &repository.User{
			Email:     input.Email,
			Password:  hashed,
			Name:      input.Name,
			Status:    repository.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailExists
			}
			return err
		}
		if _, err := tx.Bakers().Create(ctx, &repository.Baker{
			UserID:       created.ID,
			Slug:         slug,
			BusinessName: input.BusinessName,
			Email:        input.Email,
			ThemeName:    themeName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSlugTaken
			}
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, security.Event{Kind: security.EventRegister, ActorID: user.ID, IP: input.IP, UA: input.UserAgent, Metadata: map[string]any{"slug": slug}})
	}
	return s.auth.IssueForUser(ctx, user, input.ClientMeta)
}

// pickSlug honours an explicit slug or derives a free one from the business name.
func (s *registrationService) pickSlug(ctx context.Context, requested, businessName string) (string, error) {
	if requested != "" {
		taken, err := s.slugTaken(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return requested, nil
	}
	base := validate.Slug(businessName)
	if base == "" {
		return "", fmt.Errorf("%w: business name has no usable characters / 店铺名称无法生成地址", ErrInvalidInput)
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.slugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", ErrSlugTaken
}

func (s *registrationService) slugTaken(ctx context.Context, slug string) (bool, error) {
	_, err := s.bakers.FindBySlug(ctx, slug)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
