package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/cache"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// AdminCatalogService covers the admin views of bakers and themes.
type AdminCatalogService interface {
	ListBakers(ctx context.Context, desc query.Descriptor) (*Page[*BakerView], error)
	SetBakerPublished(ctx context.Context, bakerID int64, published bool) (*BakerView, error)

	ListThemes(ctx context.Context, desc query.Descriptor) (*Page[*ThemeView], error)
	CreateTheme(ctx context.Context, input ThemeInput) (*ThemeView, error)
	UpdateTheme(ctx context.Context, id int64, input ThemeInput) (*ThemeView, error)
	DeleteTheme(ctx context.Context, id int64) error
	ImportThemes(ctx context.Context, inputs []ThemeInput) (int, error)
}

// ThemeInput 主题写入参数，也是 theme import 的 YAML 结构。
type ThemeInput struct {
	Name         string `json:"name" yaml:"name" validate:"required,slug,max=40"`
	DisplayName  string `json:"display_name" yaml:"display_name" validate:"required,max=80"`
	PrimaryColor string `json:"primary_color" yaml:"primary_color" validate:"required,hexrgb"`
	AccentColor  string `json:"accent_color" yaml:"accent_color" validate:"required,hexrgb"`
	FontFamily   string `json:"font_family" yaml:"font_family" validate:"max=80"`
	Featured     bool   `json:"featured" yaml:"featured"`
}

func (in *ThemeInput) normalize() {
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	in.DisplayName = sanitizeText(in.DisplayName)
	in.PrimaryColor = strings.ToLower(strings.TrimSpace(in.PrimaryColor))
	in.AccentColor = strings.ToLower(strings.TrimSpace(in.AccentColor))
	in.FontFamily = sanitizeText(in.FontFamily)
}

type adminCatalogService struct {
	bakers    repository.BakerRepository
	themes    repository.ThemeRepository
	cache     cache.Store
	validator *validate.Validator
	bounds    query.Bounds
	now       func() time.Time
}

// NewAdminCatalogService 构建店铺与主题管理服务。showcase 缓存在主题变更后清空。
func NewAdminCatalogService(store repository.Store, showcaseCache cache.Store, validator *validate.Validator, bounds query.Bounds) AdminCatalogService {
	s := &adminCatalogService{
		bakers:    store.Bakers(),
		themes:    store.Themes(),
		validator: validator,
		bounds:    bounds,
		now:       time.Now,
	}
	if showcaseCache != nil {
		s.cache = showcaseCache.Namespace(ShowcaseCacheNamespace)
	}
	return s
}

func (s *adminCatalogService) ListBakers(ctx context.Context, desc query.Descriptor) (*Page[*BakerView], error) {
	items, total, err := s.bakers.List(ctx, repository.ListQuery{Descriptor: desc})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toBakerView), total, desc, s.bounds), nil
}

func (s *adminCatalogService) SetBakerPublished(ctx context.Context, bakerID int64, published bool) (*BakerView, error) {
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

func (s *adminCatalogService) ListThemes(ctx context.Context, desc query.Descriptor) (*Page[*ThemeView], error) {
	items, total, err := s.themes.List(ctx, repository.ListQuery{Descriptor: desc})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toThemeView), total, desc, s.bounds), nil
}

func (s *adminCatalogService) CreateTheme(ctx context.Context, input ThemeInput) (*ThemeView, error) {
	input.normalize()
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}
	now := nowUnix(s.now)
	theme := input.apply(&repository.Theme{CreatedAt: now})
	theme.UpdatedAt = now
	created, err := s.themes.Create(ctx, theme)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.purge(ctx)
	return toThemeView(created), nil
}

func (s *adminCatalogService) UpdateTheme(ctx context.Context, id int64, input ThemeInput) (*ThemeView, error) {
	input.normalize()
	if err := checkInput(s.validator, input); err != nil {
		return nil, err
	}
	theme, err := s.themes.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if theme.Name != input.Name {
		return nil, fmt.Errorf("%w: theme name is immutable / 主题名称不可修改", ErrInvalidInput)
	}
	input.apply(theme)
	theme.UpdatedAt = nowUnix(s.now)
	if err := s.themes.Update(ctx, theme); err != nil {
		return nil, mapRepoErr(err)
	}
	s.purge(ctx)
	return toThemeView(theme), nil
}

// DeleteTheme refuses to remove a theme that any baker still uses.
func (s *adminCatalogService) DeleteTheme(ctx context.Context, id int64) error {
	theme, err := s.themes.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	limit := 1
	_, inUse, err := s.bakers.List(ctx, repository.ListQuery{Descriptor: query.Descriptor{
		Filter: map[string]string{"themeName": theme.Name},
		Limit:  &limit,
	}})
	if err != nil {
		return mapRepoErr(err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: theme %q is used by %d bakers / 主题仍在使用", ErrConflict, theme.Name, inUse)
	}
	if err := s.themes.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.purge(ctx)
	return nil
}

// ImportThemes upserts themes by name and returns how many were written.
func (s *adminCatalogService) ImportThemes(ctx context.Context, inputs []ThemeInput) (int, error) {
	var errs []error
	written := 0
	now := nowUnix(s.now)
	for i := range inputs {
		input := inputs[i]
		input.normalize()
		if err := checkInput(s.validator, input); err != nil {
			errs = append(errs, fmt.Errorf("theme #%d %q: %w", i+1, input.Name, err))
			continue
		}
		theme := input.apply(&repository.Theme{CreatedAt: now})
		theme.UpdatedAt = now
		if err := s.themes.Upsert(ctx, theme); err != nil {
			errs = append(errs, fmt.Errorf("theme %q: %w", input.Name, mapRepoErr(err)))
			continue
		}
		written++
	}
	if written > 0 {
		s.purge(ctx)
	}
	return written, errors.Join(errs...)
}

func (in ThemeInput) apply(theme *repository.Theme) *repository.Theme {
	theme.Name = in.Name
	theme.DisplayName = in.DisplayName
	theme.PrimaryColor = in.PrimaryColor
	theme.AccentColor = in.AccentColor
	theme.FontFamily = in.FontFamily
	theme.Featured = in.Featured
	return theme
}

func (s *adminCatalogService) purge(ctx context.Context) {
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
}
