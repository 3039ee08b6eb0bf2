package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

func TestProductsStats_EmptyAndNonEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	shop := seedShop(t, db, "u1", "Shop", "shop")

	count, maxTS, err := ProductsStats(ctx, db, shop.ID)
	if err != nil {
		t.Fatalf("ProductsStats: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("expected (0, nil) for empty shop, got (%d, %v)", count, maxTS)
	}

	seedProduct(t, db, shop.ID, "Item", "item", domain.StatusDraft)
	seedProduct(t, db, shop.ID, "Item 2", "item-2", domain.StatusDraft)

	count, maxTS, err = ProductsStats(ctx, db, shop.ID)
	if err != nil {
		t.Fatalf("ProductsStats: %v", err)
	}
	if count != 2 || maxTS == nil {
		t.Fatalf("expected (2, non-nil), got (%d, %v)", count, maxTS)
	}
}

func TestVisitsStats_TracksLatest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	shop := seedShop(t, db, "u1", "Shop", "shop")

	count, latest, err := VisitsStats(ctx, db, shop.ID)
	if err != nil || count != 0 || latest != nil {
		t.Fatalf("expected (0, nil, nil) for empty log, got (%d, %v, %v)", count, latest, err)
	}

	older := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	seedVisitAt(t, db, shop.ID, domain.ActionView, newer)
	seedVisitAt(t, db, shop.ID, domain.ActionWhatsApp, older)

	count, latest, err = VisitsStats(ctx, db, shop.ID)
	if err != nil {
		t.Fatalf("VisitsStats: %v", err)
	}
	if count != 2 || latest == nil || !latest.Equal(newer) {
		t.Fatalf("expected (2, %v), got (%d, %v)", newer, count, latest)
	}
}
