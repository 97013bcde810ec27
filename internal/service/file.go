package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/storage"
)

// FileService stores uploads and serves them back.
type FileService interface {
	Upload(ctx context.Context, bakerID int64, input UploadInput) (*FileView, error)
	List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*FileView], error)
	Delete(ctx context.Context, bakerID, id int64) error
	// Open streams a file. bakerID zero means anonymous access, which is
	// limited to files of published storefronts.
	Open(ctx context.Context, bakerID, id int64, thumbnail bool) (*storage.Object, *FileView, error)
}

// UploadInput 上传内容。
type UploadInput struct {
	Name string
	Body io.Reader
}

// FileOptions tune upload handling.
type FileOptions struct {
	MaxBytes       int64
	ThumbnailWidth uint
}

type fileService struct {
	files   repository.FileRepository
	bakers  repository.BakerRepository
	backend storage.Backend
	opts    FileOptions
	bounds  query.Bounds
	logger  *slog.Logger
	now     func() time.Time
}

const defaultMaxUploadBytes = 10 << 20

// NewFileService 构造文件服务。
func NewFileService(store repository.Store, backend storage.Backend, opts FileOptions, bounds query.Bounds, logger *slog.Logger) FileService {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &fileService{
		files:   store.Files(),
		bakers:  store.Bakers(),
		backend: backend,
		opts:    opts,
		bounds:  bounds,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, bakerID int64, input UploadInput) (*FileView, error) {
	if input.Body == nil {
		return nil, fmt.Errorf("%w: empty upload / 上传内容为空", ErrInvalidInput)
	}
	data, err := io.ReadAll(io.LimitReader(input.Body, s.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return nil, ErrPayloadTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload / 上传内容为空", ErrInvalidInput)
	}
	detected, err := storage.Detect(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}

	id := uuid.NewString()
	record := &repository.File{
		BakerID:      bakerID,
		StorageKey:   fmt.Sprintf("bakers/%d/%s%s", bakerID, id, detected.Extension),
		OriginalName: cleanFileName(input.Name),
		MimeType:     detected.MIME,
		Size:         int64(len(data)),
		CreatedAt:    nowUnix(s.now),
	}
	if detected.IsImage() {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			record.Width, record.Height = cfg.Width, cfg.Height
		}
	}

	if err := s.backend.Put(ctx, record.StorageKey, bytes.NewReader(data), record.Size, detected.MIME); err != nil {
		return nil, err
	}
	if detected.IsImage() && s.opts.ThumbnailWidth > 0 {
		thumb, contentType, err := storage.Thumbnail(bytes.NewReader(data), s.opts.ThumbnailWidth)
		if err != nil {
			s.logger.WarnContext(ctx, "thumbnail failed", "key", record.StorageKey, "error", err)
		} else {
			thumbKey := fmt.Sprintf("bakers/%d/thumbs/%s%s", bakerID, id, detected.Extension)
			if err := s.backend.Put(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), contentType); err != nil {
				s.logger.WarnContext(ctx, "store thumbnail failed", "key", thumbKey, "error", err)
			} else {
				record.ThumbnailKey = thumbKey
			}
		}
	}

	created, err := s.files.Create(ctx, record)
	if err != nil {
		s.removeObjects(ctx, record)
		return nil, mapRepoErr(err)
	}
	return toFileView(created), nil
}

func (s *fileService) List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*FileView], error) {
	items, total, err := s.files.List(ctx, repository.ForBaker(bakerID, desc))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toFileView), total, desc, s.bounds), nil
}

func (s *fileService) Delete(ctx context.Context, bakerID, id int64) error {
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if file.BakerID != bakerID {
		return ErrNotFound
	}
	if err := s.files.Delete(ctx, bakerID, id); err != nil {
		return mapRepoErr(err)
	}
	s.removeObjects(ctx, file)
	return nil
}

func (s *fileService) Open(ctx context.Context, bakerID, id int64, thumbnail bool) (*storage.Object, *FileView, error) {
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapRepoErr(err)
	}
	if bakerID != 0 && file.BakerID != bakerID {
		return nil, nil, ErrNotFound
	}
	if bakerID == 0 {
		baker, err := s.bakers.FindByID(ctx, file.BakerID)
		if err != nil || !baker.Published {
			return nil, nil, ErrNotFound
		}
	}
	key := file.StorageKey
	if thumbnail {
		if file.ThumbnailKey == "" {
			return nil, nil, ErrNotFound
		}
		key = file.ThumbnailKey
	}
	obj, err := s.backend.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if obj.ContentType == "" && !thumbnail {
		obj.ContentType = file.MimeType
	}
	return obj, toFileView(file), nil
}

func (s *fileService) removeObjects(ctx context.Context, file *repository.File) {
	for _, key := range []string{file.StorageKey, file.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "delete stored object failed", "key", key, "error", err)
		}
	}
}

func cleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		return "upload"
	}
	if len(base) > 200 {
		base = base[:200]
	}
	return base
}
