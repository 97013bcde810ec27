package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/support/validate"
)

// GalleryService manages showcased creations.
type GalleryService interface {
	List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*GalleryItemView], error)
	Get(ctx context.Context, bakerID, id int64) (*GalleryItemView, error)
	Create(ctx context.Context, bakerID int64, input GalleryInput) (*GalleryItemView, error)
	Update(ctx context.Context, bakerID, id int64, input GalleryInput) (*GalleryItemView, error)
	Delete(ctx context.Context, bakerID, id int64) error
}

// GalleryInput 作品信息。
type GalleryInput struct {
	FileID      *int64 `json:"file_id,omitempty" validate:"omitempty,min=1"`
	Title       string `json:"title" validate:"required,max=160"`
	Description string `json:"description" validate:"max=4000"`
	Category    string `json:"category" validate:"max=60"`
	Featured    bool   `json:"featured"`
	Sort        int64  `json:"sort"`
}

type galleryService struct {
	gallery   repository.GalleryRepository
	files     repository.FileRepository
	bounds    query.Bounds
	validator *validate.Validator
	now       func() time.Time
}

// NewGalleryService 构造作品服务。
func NewGalleryService(store repository.Store, bounds query.Bounds, validator *validate.Validator) GalleryService {
	return &galleryService{gallery: store.Gallery(), files: store.Files(), bounds: bounds, validator: validator, now: time.Now}
}

func (s *galleryService) List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*GalleryItemView], error) {
	return listGallery(ctx, s.gallery, bakerID, desc, s.bounds)
}

func listGallery(ctx context.Context, gallery repository.GalleryRepository, bakerID int64, desc query.Descriptor, bounds query.Bounds) (*Page[*GalleryItemView], error) {
	items, total, err := gallery.List(ctx, repository.ForBaker(bakerID, desc))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toGalleryItemView), total, desc, bounds), nil
}

func (s *galleryService) Get(ctx context.Context, bakerID, id int64) (*GalleryItemView, error) {
	item, err := s.gallery.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toGalleryItemView(item), nil
}

func (s *galleryService) Create(ctx context.Context, bakerID int64, input GalleryInput) (*GalleryItemView, error) {
	if err := s.check(ctx, bakerID, &input); err != nil {
		return nil, err
	}
	now := nowUnix(s.now)
	created, err := s.gallery.Create(ctx, &repository.GalleryItem{
		BakerID:     bakerID,
		FileID:      input.FileID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Featured:    input.Featured,
		Sort:        input.Sort,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toGalleryItemView(created), nil
}

func (s *galleryService) Update(ctx context.Context, bakerID, id int64, input GalleryInput) (*GalleryItemView, error) {
	if err := s.check(ctx, bakerID, &input); err != nil {
		return nil, err
	}
	item, err := s.gallery.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	item.FileID = input.FileID
	item.Title = input.Title
	item.Description = input.Description
	item.Category = input.Category
	item.Featured = input.Featured
	item.Sort = input.Sort
	item.UpdatedAt = nowUnix(s.now)
	if err := s.gallery.Update(ctx, item); err != nil {
		return nil, mapRepoErr(err)
	}
	return toGalleryItemView(item), nil
}

func (s *galleryService) Delete(ctx context.Context, bakerID, id int64) error {
	return mapRepoErr(s.gallery.Delete(ctx, bakerID, id))
}

func (s *galleryService) check(ctx context.Context, bakerID int64, input *GalleryInput) error {
	input.Title = sanitizeText(input.Title)
	input.Description = sanitizeHTML(input.Description)
	input.Category = strings.ToLower(sanitizeText(input.Category))
	if err := checkInput(s.validator, input); err != nil {
		return err
	}
	if input.FileID != nil {
		file, err := s.files.FindByID(ctx, *input.FileID)
		if err != nil || file.BakerID != bakerID {
			return fmt.Errorf("%w: file not found / 文件不存在", ErrInvalidInput)
		}
	}
	return nil
}
