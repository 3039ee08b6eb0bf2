package repo

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per test to avoid schema
// leakage across tests, and migrates the full catalog schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
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

// seedShop inserts a shop row and returns it.
func seedShop(t *testing.T, db *gorm.DB, userID, name, slug string) *domain.Shop {
	t.Helper()
	s := &domain.Shop{ID: uuid.NewString(), UserID: userID, Name: name, Slug: slug, IsActive: true}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	return s
}
