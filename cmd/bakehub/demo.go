package main

import (
	"context"
	"fmt"
	"time"

	"github.com/creamcroissant/bakehub/internal/api"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/service"
)

const (
	demoEmail    = "demo@bakehub.local"
	demoPassword = "bakehub-demo"
)

type demoOrder struct {
	customer int
	input    service.OrderInput
	advance  []string
}

// seedDemo registers a published demo bakery and fills its dashboard.
func seedDemo(ctx context.Context, svc api.Services, email, password string, now time.Time) (*service.LoginResult, error) {
	if email == "" {
		email = demoEmail
	}
	if password == "" {
		password = demoPassword
	}

	account, err := svc.Register.Register(ctx, service.RegisterInput{
		Email:        email,
		Password:     password,
		Name:         "Demo Baker",
		BusinessName: "Crumb & Co",
	})
	if err != nil {
		return nil, fmt.Errorf("register demo baker: %w", err)
	}
	bakerID := account.BakerID

	bio := "Small-batch sourdough, laminated pastry and celebration cakes baked to order."
	location := "Riverside"
	if _, err := svc.Bakers.UpdateProfile(ctx, bakerID, service.ProfileInput{Bio: &bio, Location: &location}); err != nil {
		return nil, fmt.Errorf("demo profile: %w", err)
	}

	customers := []service.CustomerInput{
		{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555-0101"},
		{Name: "Grace Hopper", Email: "grace@example.com", Notes: "Nut allergy."},
		{Name: "Alan Turing", Email: "alan@example.com"},
	}
	customerIDs := make([]int64, 0, len(customers))
	for _, input := range customers {
		c, err := svc.Customers.Create(ctx, bakerID, input)
		if err != nil {
			return nil, fmt.Errorf("demo customer %s: %w", input.Name, err)
		}
		customerIDs = append(customerIDs, c.ID)
	}

	day := int64(24 * time.Hour / time.Second)
	today := now.Unix()
	orders := []demoOrder{
		{0, service.OrderInput{Title: "Three-tier wedding cake", Category: "wedding", Quantity: 1, PriceCents: 42000, DueDate: today + 21*day}, []string{repository.OrderStatusConfirmed}},
		{1, service.OrderInput{Title: "Birthday chocolate tart", Category: "birthday", Quantity: 1, PriceCents: 3800, DueDate: today + 3*day}, []string{repository.OrderStatusConfirmed, repository.OrderStatusInProgress}},
		{2, service.OrderInput{Title: "Croissant box", Category: "pastry", Quantity: 24, PriceCents: 5400, DueDate: today + day}, []string{repository.OrderStatusConfirmed, repository.OrderStatusInProgress, repository.OrderStatusReady}},
		{0, service.OrderInput{Title: "Sourdough loaves", Category: "bread", Quantity: 4, PriceCents: 2400, DueDate: today - 2*day}, []string{repository.OrderStatusConfirmed, repository.OrderStatusInProgress, repository.OrderStatusReady, repository.OrderStatusDelivered}},
		{1, service.OrderInput{Title: "Macaron tower", Category: "wedding", Quantity: 1, PriceCents: 16000, DueDate: today + 30*day}, nil},
	}
	for _, o := range orders {
		input := o.input
		input.CustomerID = &customerIDs[o.customer]
		order, err := svc.Orders.Create(ctx, bakerID, input)
		if err != nil {
			return nil, fmt.Errorf("demo order %s: %w", input.Title, err)
		}
		for _, status := range o.advance {
			if _, err := svc.Orders.Transition(ctx, bakerID, order.ID, status); err != nil {
				return nil, fmt.Errorf("demo order %s -> %s: %w", input.Title, status, err)
			}
		}
	}

	gallery := []service.GalleryInput{
		{Title: "Peony wedding cake", Category: "wedding", Featured: true, Sort: 1},
		{Title: "Laminated croissants", Category: "pastry", Featured: true, Sort: 2},
		{Title: "Country sourdough", Category: "bread", Sort: 3},
		{Title: "Lemon drizzle", Category: "cake", Featured: true, Sort: 4},
	}
	for _, input := range gallery {
		if _, err := svc.Gallery.Create(ctx, bakerID, input); err != nil {
			return nil, fmt.Errorf("demo gallery %s: %w", input.Title, err)
		}
	}

	if _, err := svc.Bakers.SetPublished(ctx, bakerID, true); err != nil {
		return nil, fmt.Errorf("publish demo bakery: %w", err)
	}
	return account, nil
}

func runSeedDemo(ctx context.Context, a *app, email, password string) error {
	account, err := seedDemo(ctx, a.services, email, password, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Demo baker %s created; storefront /api/v1/public/bakers/%s\n", account.Email, account.BakerSlug)
	return nil
}
