package service

import (
	"context"
	"fmt"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

// EntityService lists any tenant-owned entity by name. It backs the generic
// dashboard table, which only knows the entity name and a query string.
type EntityService interface {
	List(ctx context.Context, bakerID int64, entity string, desc query.Descriptor) (*Page[any], error)
	Describe(entity string) (*EntityDescription, error)
	Entities() []string
}

// EntityDescription lists the sortable and filterable fields of an entity.
type EntityDescription struct {
	Entity      string        `json:"entity"`
	DefaultSort query.OrderBy `json:"default_sort"`
	Fields      []EntityField `json:"fields"`
}

// EntityField 字段描述。
type EntityField struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type entityLister func(ctx context.Context, q repository.ListQuery) ([]any, int64, error)

type entityService struct {
	listers map[string]entityLister
	bounds  query.Bounds
}

var tenantEntities = []string{
	repository.EntityCustomers,
	repository.EntityOrders,
	repository.EntityGallery,
	repository.EntityMessages,
	repository.EntityFiles,
}

// NewEntityService 构造通用实体列表服务。
func NewEntityService(store repository.Store, bounds query.Bounds) EntityService {
	return &entityService{
		bounds: bounds,
		listers: map[string]entityLister{
			repository.EntityCustomers: lister(store.Customers().List, toCustomerView),
			repository.EntityOrders:    lister(store.Orders().List, toOrderView),
			repository.EntityGallery:   lister(store.Gallery().List, toGalleryItemView),
			repository.EntityMessages:  lister(store.Messages().List, toMessageView),
			repository.EntityFiles:     lister(store.Files().List, toFileView),
		},
	}
}

func lister[T, V any](list func(context.Context, repository.ListQuery) ([]*T, int64, error), conv func(*T) *V) entityLister {
	return func(ctx context.Context, q repository.ListQuery) ([]any, int64, error) {
		items, total, err := list(ctx, q)
		if err != nil {
			return nil, 0, err
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, conv(item))
		}
		return out, total, nil
	}
}

func (s *entityService) List(ctx context.Context, bakerID int64, entity string, desc query.Descriptor) (*Page[any], error) {
	list, ok := s.listers[entity]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity %q", ErrNotFound, entity)
	}
	items, total, err := list(ctx, repository.ForBaker(bakerID, desc))
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return newPage(items, total, desc, s.bounds), nil
}

func (s *entityService) Describe(entity string) (*EntityDescription, error) {
	if _, ok := s.listers[entity]; !ok {
		return nil, fmt.Errorf("%w: unknown entity %q", ErrNotFound, entity)
	}
	schema, ok := repository.SchemaFor(entity)
	if !ok {
		return nil, ErrNotFound
	}
	desc := &EntityDescription{Entity: schema.Entity(), DefaultSort: schema.DefaultSort()}
	for _, field := range schema.Fields() {
		desc.Fields = append(desc.Fields, EntityField{Name: field.Name, Kind: field.Kind.String()})
	}
	return desc, nil
}

func (s *entityService) Entities() []string {
	return append([]string(nil), tenantEntities...)
}
