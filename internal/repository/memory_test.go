package repository

import (
	"context"
	"testing"

	"craftmarket/internal/domain"
)

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{Title: "Clay pot", Image: "pot.jpg", Price: 25, ArtisanID: "art-1"}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("no id")
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get: %v", err)
	}

	p.Price = 30
	if err := store.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemoryStore_ReviewsDoNotLeak(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{Title: "Basket", Image: "b.jpg", ArtisanID: "art-1"}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetByID(ctx, p.ID)
	got.Reviews = append(got.Reviews, domain.Review{UserID: "u1", Rating: 5})

	// mutation of the returned copy must not reach the store
	again, _ := store.GetByID(ctx, p.ID)
	if len(again.Reviews) != 0 {
		t.Fatalf("review leaked into store")
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	add := func(title, artisan string, price float64, approved bool) {
		p := domain.Product{Title: title, Image: "i.jpg", Price: price, ArtisanID: artisan, IsApproved: approved}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	add("Clay pot", "a1", 100, true)
	add("Silk scarf", "a1", 50, false)
	add("Wood bowl", "a2", 150, true)

	list, _ := store.List(ctx, ProductFilter{ApprovedOnly: true})
	if len(list) != 2 {
		t.Fatalf("approved: expected 2, got %d", len(list))
	}

	list, _ = store.List(ctx, ProductFilter{UnapprovedOnly: true})
	if len(list) != 1 || list[0].Title != "Silk scarf" {
		t.Fatalf("unapproved filter failed")
	}

	list, _ = store.List(ctx, ProductFilter{ArtisanID: "a1"})
	if len(list) != 2 {
		t.Fatalf("artisan: expected 2, got %d", len(list))
	}

	list, _ = store.List(ctx, ProductFilter{TitleSubstring: "pot"})
	if len(list) != 1 || list[0].Title != "Clay pot" {
		t.Fatalf("substring filter failed")
	}

	min := 100.0
	list, _ = store.List(ctx, ProductFilter{MinPrice: &min})
	for _, p := range list {
		if p.Price < min {
			t.Fatalf("min filter fail")
		}
	}

	max := 100.0
	list, _ = store.List(ctx, ProductFilter{MaxPrice: &max})
	for _, p := range list {
		if p.Price > max {
			t.Fatalf("max filter fail")
		}
	}
}

func TestMemoryOrders_CRUDAndListing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	o := domain.Order{
		UserID: "u1",
		Items: []domain.OrderItem{
			{ProductID: "p1", ArtisanID: "a1", Quantity: 2},
			{ProductID: "p2", ArtisanID: "a2", Quantity: 1},
		},
		Total:         45,
		Status:        domain.OrderStatusPlaced,
		PaymentStatus: domain.PaymentStatusPending,
	}
	if err := orders.Create(ctx, &o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == "" || o.PlacedAt.IsZero() {
		t.Fatalf("id/timestamp not assigned")
	}

	got, err := orders.GetByID(ctx, o.ID)
	if err != nil || got.UserID != "u1" {
		t.Fatalf("get: %v", err)
	}

	byUser, _ := orders.ListByUser(ctx, "u1")
	if len(byUser) != 1 {
		t.Fatalf("by user: expected 1, got %d", len(byUser))
	}
	byUser, _ = orders.ListByUser(ctx, "u2")
	if len(byUser) != 0 {
		t.Fatalf("by user: expected 0 for stranger")
	}

	byArtisan, _ := orders.ListByArtisan(ctx, "a2")
	if len(byArtisan) != 1 {
		t.Fatalf("by artisan: expected 1, got %d", len(byArtisan))
	}
	byArtisan, _ = orders.ListByArtisan(ctx, "a3")
	if len(byArtisan) != 0 {
		t.Fatalf("by artisan: expected 0 for stranger")
	}

	got.Status = domain.OrderStatusProcessing
	if err := orders.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := orders.GetByID(ctx, o.ID)
	if again.Status != domain.OrderStatusProcessing {
		t.Fatalf("status not persisted")
	}
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accounts := NewMemoryAccounts(store)

	a := domain.Account{Name: "Meera", Email: "meera@example.com", Role: domain.RoleArtisan}
	if err := accounts.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	if a.ID == "" {
		t.Fatalf("no id")
	}

	got, err := accounts.GetByID(ctx, a.ID)
	if err != nil || got.IsApproved {
		t.Fatalf("get: %v approved=%v", err, got.IsApproved)
	}

	upd, err := accounts.SetApproval(ctx, a.ID, true)
	if err != nil || !upd.IsApproved {
		t.Fatalf("approve: %v", err)
	}

	if _, err := accounts.SetApproval(ctx, "missing", true); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryTx_SerializesReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx := NewMemoryTx(store)

	p := domain.Product{Title: "Vase", Image: "v.jpg", ArtisanID: "a1"}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	// emulate two concurrent review appends through the tx boundary
	appendReview := func(userID string) error {
		return tx.WithTransaction(ctx, func(ctx context.Context) error {
			pp, err := store.GetByID(ctx, p.ID)
			if err != nil {
				return err
			}
			pp.Reviews = append(pp.Reviews, domain.Review{UserID: userID, Rating: 4})
			pp.NumReviews = len(pp.Reviews)
			return store.Update(ctx, pp)
		})
	}

	done := make(chan error, 2)
	go func() { done <- appendReview("u1") }()
	go func() { done <- appendReview("u2") }()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("tx: %v", err)
		}
	}

	pp, _ := store.GetByID(ctx, p.ID)
	if len(pp.Reviews) != 2 || pp.NumReviews != 2 {
		t.Fatalf("lost update: %d reviews, numReviews=%d", len(pp.Reviews), pp.NumReviews)
	}
}
