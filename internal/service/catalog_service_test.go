package service

import (
	"context"
	"errors"
	"testing"

	"craftmarket/internal/domain"
	"craftmarket/internal/repository"
)

func setup(t *testing.T) (*CatalogService, *ReviewService, *OrderService, *AccountService) {
	t.Helper()
	store := repository.NewMemoryStore()
	orders := repository.NewMemoryOrders(store)
	accounts := repository.NewMemoryAccounts(store)
	tx := repository.NewMemoryTx(store)
	return NewCatalogService(store, accounts, tx),
		NewReviewService(store, tx),
		NewOrderService(store, orders, tx),
		NewAccountService(accounts)
}

func mustAccount(t *testing.T, as *AccountService, name string, role domain.Role, approved bool) *domain.Account {
	t.Helper()
	ctx := context.Background()
	a, err := as.Create(ctx, domain.Account{Name: name, Email: name + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if approved {
		a, err = as.SetApproval(ctx, a.ID, true)
		if err != nil {
			t.Fatalf("approve account: %v", err)
		}
	}
	return a
}

func mustProduct(t *testing.T, cs *CatalogService, artisanID, title string, price float64) *domain.Product {
	t.Helper()
	p, err := cs.Create(context.Background(), domain.Product{
		Title: title, Image: title + ".jpg", Price: price, ArtisanID: artisanID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestCreateProduct_UnapprovedArtisanRejected(t *testing.T) {
	ctx := context.Background()
	cs, _, _, as := setup(t)
	artisan := mustAccount(t, as, "meera", domain.RoleArtisan, false)

	_, err := cs.Create(ctx, domain.Product{Title: "Pot", Image: "p.jpg", Price: 10, ArtisanID: artisan.ID})
	if !errors.Is(err, ErrArtisanNotApproved) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// same payload passes once the profile is approved
	if _, err := as.SetApproval(ctx, artisan.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := cs.Create(ctx, domain.Product{Title: "Pot", Image: "p.jpg", Price: 10, ArtisanID: artisan.ID}); err != nil {
		t.Fatalf("expected success after approval, got %v", err)
	}
}

func TestCreateProduct_UnknownArtisan(t *testing.T) {
	ctx := context.Background()
	cs, _, _, _ := setup(t)
	_, err := cs.Create(ctx, domain.Product{Title: "Pot", Image: "p.jpg", Price: 10, ArtisanID: "ghost"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateProduct_AdminBypassesGate(t *testing.T) {
	ctx := context.Background()
	cs, _, _, as := setup(t)
	admin := mustAccount(t, as, "root", domain.RoleAdmin, false)
	if _, err := cs.Create(ctx, domain.Product{Title: "Pot", Image: "p.jpg", Price: 10, ArtisanID: admin.ID}); err != nil {
		t.Fatalf("non-artisan roles need no approval: %v", err)
	}
}

func TestCreateProduct_ApprovalForcedFalse(t *testing.T) {
	ctx := context.Background()
	cs, _, _, as := setup(t)
	artisan := mustAccount(t, as, "meera", domain.RoleArtisan, true)

	p, err := cs.Create(ctx, domain.Product{
		Title: "Pot", Image: "p.jpg", Price: 10, ArtisanID: artisan.ID,
		IsApproved: true, NumReviews: 7, Rating: 4.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.IsApproved || p.NumReviews != 0 || p.Rating != 0 {
		t.Fatalf("input flags not reset: %+v", p)
	}
}

func TestSetApprovalAndListings(t *testing.T) {
	ctx := context.Background()
	cs, _, _, as := setup(t)
	artisan := mustAccount(t, as, "meera", domain.RoleArtisan, true)
	p1 := mustProduct(t, cs, artisan.ID, "Pot", 10)
	mustProduct(t, cs, artisan.ID, "Scarf", 20)

	approved, err := cs.ListApproved(ctx, ApprovedFilter{})
	if err != nil || len(approved) != 0 {
		t.Fatalf("expected empty storefront before approval")
	}

	unapproved, err := cs.ListUnapproved(ctx)
	if err != nil || len(unapproved) != 2 {
		t.Fatalf("expected 2 unapproved, got %d", len(unapproved))
	}
	for _, up := range unapproved {
		if up.ArtisanName != "meera" || up.ArtisanEmail != "meera@example.com" {
			t.Fatalf("artisan annotation missing: %+v", up)
		}
	}

	if _, err := cs.SetApproval(ctx, p1.ID, true); err != nil {
		t.Fatalf("set approval: %v", err)
	}
	approved, _ = cs.ListApproved(ctx, ApprovedFilter{})
	if len(approved) != 1 || approved[0].ID != p1.ID {
		t.Fatalf("storefront should show exactly the approved product")
	}

	mine, _ := cs.ListByArtisan(ctx, artisan.ID)
	if len(mine) != 2 {
		t.Fatalf("artisan listing ignores approval state, got %d", len(mine))
	}
}

func TestUpdateProduct_PartialMerge(t *testing.T) {
	ctx := context.Background()
	cs, _, _, as := setup(t)
	artisan := mustAccount(t, as, "meera", domain.RoleArtisan, true)
	p := mustProduct(t, cs, artisan.ID, "Pot", 10)

	title := "Glazed pot"
	price := 15.0
	upd, err := cs.Update(ctx, p.ID, ProductPatch{Title: &title, Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Title != "Glazed pot" || upd.Price != 15 {
		t.Fatalf("fields not merged: %+v", upd)
	}
	// untouched fields survive
	if upd.Image != "Pot.jpg" || upd.ArtisanID != artisan.ID {
		t.Fatalf("unpatched fields clobbered: %+v", upd)
	}

	bad := -1.0
	if _, err := cs.Update(ctx, p.ID, ProductPatch{Price: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative price, got %v", err)
	}

	if _, err := cs.Update(ctx, "missing", ProductPatch{Title: &title}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	cs, _, _, as := setup(t)
	artisan := mustAccount(t, as, "meera", domain.RoleArtisan, true)
	p := mustProduct(t, cs, artisan.ID, "Pot", 10)

	if err := cs.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cs.GetByID(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := cs.Delete(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}
