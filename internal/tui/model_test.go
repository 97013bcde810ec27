package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/service"
)

type fakeOrders struct {
	service.OrderService
	orders      []*service.OrderView
	transitions []string
	listed      []query.Descriptor
}

func (f *fakeOrders) List(_ context.Context, _ int64, desc query.Descriptor) (*service.Page[*service.OrderView], error) {
	f.listed = append(f.listed, desc)
	var out []*service.OrderView
	for _, o := range f.orders {
		if o.Status == desc.Filter["status"] {
			out = append(out, o)
		}
	}
	return &service.Page[*service.OrderView]{Data: out, Total: int64(len(out)), Limit: 100}, nil
}

func (f *fakeOrders) Transition(_ context.Context, _ int64, id int64, status string) (*service.OrderView, error) {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = status
			f.transitions = append(f.transitions, status)
			return o, nil
		}
	}
	return nil, service.ErrNotFound
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: []*service.OrderView{
		{ID: 1, Reference: "ORD-AAAA", Title: "Wedding cake", Status: repository.OrderStatusPending, Quantity: 1, PriceCents: 45000},
		{ID: 2, Reference: "ORD-BBBB", Title: "Croissants", Status: repository.OrderStatusPending, Quantity: 24, PriceCents: 3600},
		{ID: 3, Reference: "ORD-CCCC", Title: "Birthday tart", Status: repository.OrderStatusDelivered, Quantity: 1, PriceCents: 2800},
	}}
}

func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedModel(t *testing.T, orders *fakeOrders) Model {
	t.Helper()
	m := NewModel(orders, 7, "Flour & Co")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.(Model).Update(m.loadBoard()())
	return next.(Model)
}

func TestFetchColumnsFollowsLifecycleOrder(t *testing.T) {
	orders := newFakeOrders()

	columns, err := fetchColumns(context.Background(), orders, 7)
	require.NoError(t, err)
	require.Len(t, columns, len(service.OrderStatuses))

	for i, col := range columns {
		assert.Equal(t, service.OrderStatuses[i], col.Status)
	}
	assert.EqualValues(t, 2, columns[1].Total)
	assert.EqualValues(t, 1, columns[5].Total)
	assert.False(t, columns[5].Open())

	require.NotEmpty(t, orders.listed)
	require.NotNil(t, orders.listed[0].OrderBy)
	assert.Equal(t, "dueDate", orders.listed[0].OrderBy.Field)
}

func TestBoardNavigation(t *testing.T) {
	m := loadedModel(t, newFakeOrders())
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "BakeHub Orders")
	assert.Contains(t, m.View(), "Total: 3 orders")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, len(service.OrderStatuses)-1, m.selectedColumn, "selection wraps")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selectedColumn)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewOrderList, m.view)
	assert.Contains(t, m.View(), "ORD-AAAA")
	assert.Contains(t, m.View(), "450.00")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewOrderDetail, m.view)
	assert.Equal(t, "ORD-BBBB", m.detailOrder.Reference)
	assert.Contains(t, m.View(), "Mark Confirmed")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBoard, m.view)
}

func TestAdvanceOrder(t *testing.T) {
	orders := newFakeOrders()
	m := loadedModel(t, orders)
	m.selectedColumn = 1

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, runes("a"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	next, reload := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, []string{repository.OrderStatusConfirmed}, orders.transitions)
	assert.Contains(t, m.notice, "ORD-AAAA moved to Confirmed")
	require.NotNil(t, reload)

	next, _ = m.Update(reload())
	m = next.(Model)
	assert.EqualValues(t, 1, m.columns[1].Total)
	assert.EqualValues(t, 1, m.columns[2].Total)
}

func TestClosedOrdersCannotMove(t *testing.T) {
	orders := newFakeOrders()
	m := loadedModel(t, orders)
	m.selectedColumn = 5

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, runes("x"))
	assert.Nil(t, cmd)
	assert.Empty(t, orders.transitions)
	assert.Contains(t, m.notice, "cannot change")
}

func TestLifecycleProgress(t *testing.T) {
	assert.Zero(t, lifecycleProgress(repository.OrderStatusInquiry))
	assert.Equal(t, 100.0, lifecycleProgress(repository.OrderStatusDelivered))
	assert.Zero(t, lifecycleProgress(repository.OrderStatusCancelled))
	assert.Equal(t, "12.05", formatPrice(1205))
	assert.Equal(t, "Wedding...", truncate("Wedding cake tower", 10))
}
