package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{repository.OrderStatusInquiry, repository.OrderStatusPending, true},
		{repository.OrderStatusPending, repository.OrderStatusConfirmed, true},
		{repository.OrderStatusConfirmed, repository.OrderStatusInProgress, true},
		{repository.OrderStatusInProgress, repository.OrderStatusReady, true},
		{repository.OrderStatusReady, repository.OrderStatusDelivered, true},
		{repository.OrderStatusPending, repository.OrderStatusReady, false},
		{repository.OrderStatusConfirmed, repository.OrderStatusPending, false},
		{repository.OrderStatusReady, repository.OrderStatusCancelled, true},
		{repository.OrderStatusInquiry, repository.OrderStatusCancelled, true},
		{repository.OrderStatusDelivered, repository.OrderStatusCancelled, false},
		{repository.OrderStatusCancelled, repository.OrderStatusPending, false},
		{repository.OrderStatusPending, "baking", false},
		{"", repository.OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.Equal(t, repository.OrderStatusConfirmed, NextStatus(repository.OrderStatusPending))
	assert.Empty(t, NextStatus(repository.OrderStatusDelivered))
}

func TestOrderLifecycleNotifiesCustomer(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	baker := seedBaker(t, store, "baker@example.com", "crumb", true)
	notify := &recordingNotifier{}
	customers := NewCustomerService(store, testBounds, nil)
	orders := NewOrderService(store, notify, testI18n(t), testBounds, nil)

	customer, err := customers.Create(ctx, baker.ID, CustomerInput{Name: "Grace", Email: "Grace@Example.com"})
	require.NoError(t, err)

	order, err := orders.Create(ctx, baker.ID, OrderInput{CustomerID: &customer.ID, Title: "<b>Wedding</b> cake", Category: "Wedding", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, repository.OrderStatusPending, order.Status)
	assert.Equal(t, "Wedding cake", order.Title)
	assert.Equal(t, "wedding", order.Category)
	assert.True(t, strings.HasPrefix(order.Reference, "BH-"))

	_, err = orders.Transition(ctx, baker.ID, order.ID, repository.OrderStatusReady)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Empty(t, notify.emails())

	moved, err := orders.Transition(ctx, baker.ID, order.ID, repository.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderStatusConfirmed, moved.Status)

	sent := notify.emails()
	require.Len(t, sent, 1)
	assert.Equal(t, "grace@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, order.Reference)
	assert.Equal(t, "order_status", sent[0].Kind)
}

func TestOrdersAreTenantScoped(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	a := seedBaker(t, store, "a@example.com", "alpha", true)
	b := seedBaker(t, store, "b@example.com", "beta", true)
	orders := NewOrderService(store, nil, nil, testBounds, nil)

	order, err := orders.Create(ctx, a.ID, OrderInput{Title: "Croissants", Quantity: 12})
	require.NoError(t, err)

	_, err = orders.Get(ctx, b.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = orders.Transition(ctx, b.ID, order.ID, repository.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := orders.List(ctx, b.ID, query.Descriptor{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Data)
}

func TestOrderCreateValidatesInput(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	baker := seedBaker(t, store, "a@example.com", "alpha", true)
	orders := NewOrderService(store, nil, nil, testBounds, nil)

	_, err := orders.Create(ctx, baker.ID, OrderInput{Title: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = orders.Create(ctx, baker.ID, OrderInput{Title: "Pie", Status: repository.OrderStatusDelivered})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := int64(999)
	_, err = orders.Create(ctx, baker.ID, OrderInput{Title: "Pie", CustomerID: &missing})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderListPagingAndQueryErrors(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	baker := seedBaker(t, store, "a@example.com", "alpha", true)
	orders := NewOrderService(store, nil, nil, testBounds, nil)
	for _, title := range []string{"A", "B", "C"} {
		_, err := orders.Create(ctx, baker.ID, OrderInput{Title: title, Category: "bread"})
		require.NoError(t, err)
	}

	desc := query.Translate(query.Request{"sort": "title", "limit": "2", "offset": "-3", "category": "bread"})
	page, err := orders.List(ctx, baker.ID, desc)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 0, page.Offset)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "A", page.Data[0].Title)

	_, err = orders.List(ctx, baker.ID, query.Translate(query.Request{"password": "x"}))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

// scriptedOrders answers Create with the queued errors, then succeeds.
type scriptedOrders struct {
	repository.OrderRepository
	errs  []error
	calls int
}

func (o *scriptedOrders) Create(_ context.Context, order *repository.Order) (*repository.Order, error) {
	o.calls++
	if len(o.errs) > 0 {
		err := o.errs[0]
		o.errs = o.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	created := *order
	created.ID = 1
	return &created, nil
}

func TestCreateWithReferenceRetriesOnlyCollisions(t *testing.T) {
	ctx := context.Background()

	orders := &scriptedOrders{errs: []error{repository.ErrConflict, repository.ErrConflict}}
	created, err := createWithReference(ctx, orders, &repository.Order{Title: "Scones"})
	require.NoError(t, err)
	assert.Equal(t, 3, orders.calls)
	assert.True(t, strings.HasPrefix(created.Reference, "BH-"))

	ioErr := errors.New("disk I/O error")
	orders = &scriptedOrders{errs: []error{ioErr}}
	_, err = createWithReference(ctx, orders, &repository.Order{Title: "Scones"})
	assert.ErrorIs(t, err, ioErr)
	assert.Equal(t, 1, orders.calls)

	orders = &scriptedOrders{errs: []error{repository.ErrConflict, repository.ErrConflict, repository.ErrConflict}}
	_, err = createWithReference(ctx, orders, &repository.Order{Title: "Scones"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, referenceAttempts, orders.calls)
}

func TestSanitizeTextDoesNotDecodeIntoMarkup(t *testing.T) {
	cases := map[string]string{
		"Grace <script>alert(1)</script>":            "Grace",
		"&lt;script&gt;alert(1)&lt;/script&gt;Hello": "Hello",
		"<b>Lemon</b> drizzle":                       "Lemon drizzle",
		"Fish & chips":                               "Fish & chips",
		"  ":                                         "",
	}
	for in, want := range cases {
		got := sanitizeText(in)
		assert.Equal(t, want, got, in)
		assert.NotContains(t, got, "<script", in)
	}
}
