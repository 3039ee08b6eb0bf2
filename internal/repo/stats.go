// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

// ProductsStats returns aggregate metadata for a shop's products: the total
// number of rows and the maximum UpdatedAt timestamp among those rows.
//
// It executes two lightweight queries against the products table scoped to
// the provided shopID. When the shop has no products, the returned count is 0
// and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total products for shopID
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func ProductsStats(ctx context.Context, db *gorm.DB, shopID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Product{}).Where("shop_id = ?", shopID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// VisitsStats returns aggregate metadata for a shop's visit log: the total
// number of rows and the timestamp of the latest visit. Visits are immutable,
// so (count, latest CreatedAt) fully identifies the log's state for caching.
//
// Return values:
//   - count:     total visits for shopID
//   - latest:    pointer to the greatest CreatedAt, or nil if no rows
//   - err:       database error, if any
func VisitsStats(ctx context.Context, db *gorm.DB, shopID string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Visit{}).Where("shop_id = ?", shopID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
