package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

// seedVisitAt bypasses Record's now-stamping so day boundaries can be pinned.
func seedVisitAt(t *testing.T, db *gorm.DB, shopID, action string, at time.Time) {
	t.Helper()
	v := &domain.Visit{ID: uuid.NewString(), ShopID: shopID, Action: action, CreatedAt: at.UTC()}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed visit: %v", err)
	}
}

func TestRecord_ValidatesAction(t *testing.T) {
	db := newTestDB(t)
	svc := &StatsService{DB: db}
	seedShop(t, db, "u1", "Acme", "acme")
	ctx := context.Background()

	for _, action := range []string{"", "click", "VIEWED", "whatsapp"} {
		if err := svc.Record(ctx, "acme", action, "", "", ""); !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("action %q: expected ErrInvalidAction, got %v", action, err)
		}
	}

	// Nothing was appended for the rejected actions.
	var n int64
	if err := db.Model(&domain.Visit{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("visit rows = %d, %v; want 0", n, err)
	}
}

func TestRecord_UnknownShop(t *testing.T) {
	db := newTestDB(t)
	svc := &StatsService{DB: db}

	if err := svc.Record(context.Background(), "ghost", domain.ActionView, "", "", ""); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}

func TestRecord_VisitAliasAndMetadata(t *testing.T) {
	db := newTestDB(t)
	svc := &StatsService{DB: db}
	shop := seedShop(t, db, "u1", "Acme", "acme")
	ctx := context.Background()

	if err := svc.Record(ctx, "acme", "visit", "203.0.113.7", "ua/1.0", "https://ref.example"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.Record(ctx, "acme", " WhatsApp_Click ", "", "", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var rows []domain.Visit
	if err := db.Where("shop_id = ?", shop.ID).Order("created_at asc").Find(&rows).Error; err != nil {
		t.Fatalf("load visits: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Action != domain.ActionView {
		t.Fatalf("alias stored as %q, want %q", rows[0].Action, domain.ActionView)
	}
	if rows[0].IPAddress != "203.0.113.7" || rows[0].UserAgent != "ua/1.0" || rows[0].Referrer != "https://ref.example" {
		t.Fatalf("metadata not stored: %+v", rows[0])
	}
	if rows[1].Action != domain.ActionWhatsApp {
		t.Fatalf("action stored as %q, want %q", rows[1].Action, domain.ActionWhatsApp)
	}
}

func TestSummarize_NoShopIsAllZero(t *testing.T) {
	db := newTestDB(t)
	svc := &StatsService{DB: db}

	sum, err := svc.Summarize(context.Background(), domain.Principal{ID: "u1", Name: "New"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalVisits != 0 || sum.TotalProducts != 0 || len(sum.Days) != 0 {
		t.Fatalf("expected zero summary, got %+v", sum)
	}

	// Summarize must not provision a shop as a side effect.
	var n int64
	if err := db.Model(&domain.Shop{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("shop rows = %d, %v; want 0", n, err)
	}
}

func TestSummarize_BucketsAndTotals(t *testing.T) {
	db := newTestDB(t)
	svc := &StatsService{DB: db}
	shop := seedShop(t, db, "u1", "Acme", "acme")
	ctx := context.Background()

	products := &ProductService{DB: db}
	if _, err := products.Create(ctx, shop, CreateProductInput{Name: "Mug"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Out-of-order ingestion across a UTC midnight boundary.
	seedVisitAt(t, db, shop.ID, domain.ActionView, time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC))
	seedVisitAt(t, db, shop.ID, domain.ActionWhatsApp, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC))
	seedVisitAt(t, db, shop.ID, domain.ActionView, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	sum, err := svc.Summarize(ctx, domain.Principal{ID: "u1"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalVisits != 3 || sum.TotalProducts != 1 {
		t.Fatalf("totals = (%d, %d), want (3, 1)", sum.TotalVisits, sum.TotalProducts)
	}
	if len(sum.Days) != 2 {
		t.Fatalf("expected 2 day buckets, got %+v", sum.Days)
	}
	if sum.Days[0].Day != "2024-01-01" || sum.Days[0].Views != 1 || sum.Days[0].WhatsApp != 1 {
		t.Fatalf("day 1 = %+v", sum.Days[0])
	}
	if sum.Days[1].Day != "2024-01-02" || sum.Days[1].Views != 1 || sum.Days[1].WhatsApp != 0 {
		t.Fatalf("day 2 = %+v", sum.Days[1])
	}
}
