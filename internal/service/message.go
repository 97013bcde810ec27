package service

import (
	"context"
	"time"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

// MessageService is the baker's inbox.
type MessageService interface {
	List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*MessageView], error)
	Get(ctx context.Context, bakerID, id int64) (*MessageView, error)
	MarkRead(ctx context.Context, bakerID, id int64, read bool) (*MessageView, error)
	Delete(ctx context.Context, bakerID, id int64) error
	UnreadCount(ctx context.Context, bakerID int64) (int64, error)
}

type messageService struct {
	messages repository.MessageRepository
	bounds   query.Bounds
	now      func() time.Time
}

// NewMessageService 构造留言服务。
func NewMessageService(store repository.Store, bounds query.Bounds) MessageService {
	return &messageService{messages: store.Messages(), bounds: bounds, now: time.Now}
}

func (s *messageService) List(ctx context.Context, bakerID int64, desc query.Descriptor) (*Page[*MessageView], error) {
	items, total, err := s.messages.List(ctx, repository.ForBaker(bakerID, desc))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(mapViews(items, toMessageView), total, desc, s.bounds), nil
}

func (s *messageService) Get(ctx context.Context, bakerID, id int64) (*MessageView, error) {
	msg, err := s.messages.FindByID(ctx, bakerID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return toMessageView(msg), nil
}

func (s *messageService) MarkRead(ctx context.Context, bakerID, id int64, read bool) (*MessageView, error) {
	if err := s.messages.MarkRead(ctx, bakerID, id, read, nowUnix(s.now)); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.Get(ctx, bakerID, id)
}

func (s *messageService) Delete(ctx context.Context, bakerID, id int64) error {
	return mapRepoErr(s.messages.Delete(ctx, bakerID, id))
}

func (s *messageService) UnreadCount(ctx context.Context, bakerID int64) (int64, error) {
	return s.messages.CountUnread(ctx, bakerID)
}
