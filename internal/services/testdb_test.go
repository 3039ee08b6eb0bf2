package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shoplink/go-shop-backend/internal/domain"
	"github.com/shoplink/go-shop-backend/internal/repo"
)

// newTestDB opens a unique in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.Shop{}, &domain.Product{}, &domain.Visit{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// gormShopRepo adapts the package-level repo functions to the ShopRepo
// interface, matching the shim wired up in the HTTP router.
type gormShopRepo struct{}

func (gormShopRepo) CreateShop(ctx context.Context, db *gorm.DB, userID, name, slug string) (*domain.Shop, error) {
	return repo.CreateShop(ctx, db, userID, name, slug)
}

func (gormShopRepo) GetShopByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Shop, error) {
	return repo.GetShopByUser(ctx, db, userID)
}

func (gormShopRepo) GetShopBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Shop, error) {
	return repo.GetShopBySlug(ctx, db, slug)
}

func (gormShopRepo) SaveShop(ctx context.Context, db *gorm.DB, s *domain.Shop) error {
	return repo.SaveShop(ctx, db, s)
}

func (gormShopRepo) ShopSlugTaken(ctx context.Context, db *gorm.DB, candidate, excludeID string) (bool, error) {
	return repo.ShopSlugTaken(ctx, db, candidate, excludeID)
}

// seedShop inserts a shop row directly through the repository.
func seedShop(t *testing.T, db *gorm.DB, userID, name, slug string) *domain.Shop {
	t.Helper()
	s, err := repo.CreateShop(context.Background(), db, userID, name, slug)
	if err != nil {
		t.Fatalf("seed shop %q: %v", slug, err)
	}
	return s
}
