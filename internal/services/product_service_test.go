package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

func int64Ptr(n int64) *int64 { return &n }

func TestProductCreate_DefaultsAndSlug(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	shop := seedShop(t, db, "u1", "Acme", "acme")
	ctx := context.Background()

	p, err := svc.Create(ctx, shop, CreateProductInput{Name: "Blue Mug", PriceCents: 1250})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Slug != "blue-mug" || p.Status != domain.StatusDraft || !p.IsActive {
		t.Fatalf("unexpected product: %+v", p)
	}

	// Same name in the shared product namespace gets a suffix, even for
	// another shop.
	other := seedShop(t, db, "u2", "Other", "other")
	p2, err := svc.Create(ctx, other, CreateProductInput{Name: "Blue Mug"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p2.Slug != "blue-mug-1" {
		t.Fatalf("Slug = %q, want %q", p2.Slug, "blue-mug-1")
	}
}

func TestProductCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	shop := seedShop(t, db, "u1", "Acme", "acme")
	ctx := context.Background()

	if _, err := svc.Create(ctx, shop, CreateProductInput{Name: "  "}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank name: expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.Create(ctx, shop, CreateProductInput{Name: "X", PriceCents: -1}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price: expected ErrInvalidPrice, got %v", err)
	}
	if _, err := svc.Create(ctx, shop, CreateProductInput{Name: "X", Status: "live"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: expected ErrInvalidStatus, got %v", err)
	}
}

func TestProductGet_CrossShopIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	ctx := context.Background()
	shopA := seedShop(t, db, "uA", "A", "a")
	shopB := seedShop(t, db, "uB", "B", "b")

	p, err := svc.Create(ctx, shopA, CreateProductInput{Name: "Mug"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, shopA, p.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Get(ctx, shopB, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductListPage(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	ctx := context.Background()
	shop := seedShop(t, db, "u1", "Acme", "acme")

	for _, name := range []string{"One", "Two", "Three"} {
		if _, err := svc.Create(ctx, shop, CreateProductInput{Name: name}); err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
	}

	items, total, err := svc.ListPage(ctx, shop, 0, 2) // invalid page defaults to 1
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("got total=%d len=%d, want total=3 len=2", total, len(items))
	}

	empty := seedShop(t, db, "u2", "Empty", "empty")
	items, total, err = svc.ListPage(ctx, empty, 1, 20)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty shop: items=%d total=%d err=%v", len(items), total, err)
	}
}

func TestProductUpdate_PartialAndSlug(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	ctx := context.Background()
	shop := seedShop(t, db, "u1", "Acme", "acme")

	p, err := svc.Create(ctx, shop, CreateProductInput{Name: "Mug", PriceCents: 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Price-only update leaves name and slug alone.
	up, err := svc.Update(ctx, shop, p.ID, UpdateProductInput{PriceCents: int64Ptr(250)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if up.PriceCents != 250 || up.Name != "Mug" || up.Slug != "mug" {
		t.Fatalf("unexpected product after update: %+v", up)
	}

	// Renaming does not touch the slug either.
	up, err = svc.Update(ctx, shop, p.ID, UpdateProductInput{Name: strPtr("Big Mug")})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if up.Slug != "mug" {
		t.Fatalf("rename changed slug to %q", up.Slug)
	}

	// Explicit slug reassignment normalizes and reallocates.
	up, err = svc.Update(ctx, shop, p.ID, UpdateProductInput{Slug: strPtr("Big Mug")})
	if err != nil {
		t.Fatalf("slug update: %v", err)
	}
	if up.Slug != "big-mug" {
		t.Fatalf("Slug = %q, want %q", up.Slug, "big-mug")
	}

	if _, err := svc.Update(ctx, shop, p.ID, UpdateProductInput{Status: strPtr("gone")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.Update(ctx, shop, "missing", UpdateProductInput{}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product: expected ErrProductNotFound, got %v", err)
	}
}

func TestProductDelete(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	ctx := context.Background()
	shop := seedShop(t, db, "u1", "Acme", "acme")

	p, err := svc.Create(ctx, shop, CreateProductInput{Name: "Mug"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, shop, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, shop, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("second delete: expected ErrProductNotFound, got %v", err)
	}

	// The slug is free again.
	p2, err := svc.Create(ctx, shop, CreateProductInput{Name: "Mug"})
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if p2.Slug != "mug" {
		t.Fatalf("Slug = %q, want reclaimed %q", p2.Slug, "mug")
	}
}

func TestPublicCatalogPage_PublishedActiveOnly(t *testing.T) {
	db := newTestDB(t)
	svc := &ProductService{DB: db}
	ctx := context.Background()
	shop := seedShop(t, db, "u1", "Acme", "acme")

	live, err := svc.Create(ctx, shop, CreateProductInput{Name: "Live", Status: domain.StatusPublished})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, shop, CreateProductInput{Name: "Draft"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	hidden, err := svc.Create(ctx, shop, CreateProductInput{Name: "Hidden", Status: domain.StatusPublished})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, shop, hidden.ID, UpdateProductInput{IsActive: boolPtr(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	items, total, err := svc.PublicCatalogPage(ctx, 1, 20)
	if err != nil {
		t.Fatalf("PublicCatalogPage: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != live.ID {
		t.Fatalf("expected only the live product, got total=%d items=%+v", total, items)
	}

	byShop, err := svc.PublicByShop(ctx, shop.ID)
	if err != nil || len(byShop) != 1 || byShop[0].ID != live.ID {
		t.Fatalf("PublicByShop: items=%+v err=%v", byShop, err)
	}
}
