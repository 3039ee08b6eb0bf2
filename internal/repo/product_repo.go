// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model and the product-namespace slug probes.
//
// Ownership scoping: every per-tenant accessor takes the owning shopID and
// folds it into the WHERE clause, so a product owned by another shop is
// indistinguishable from a missing row (ErrNotFound, never a forbidden
// signal). Public accessors are explicitly named Public* and only surface
// published, active products.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

// CreateProduct inserts a new Product row under shopID. The unique slug
// index is the final authority on product-namespace uniqueness; a violation
// is reported as ErrDuplicate so the caller can re-run allocation.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// GetProduct fetches a single product by ID scoped to its owning shop.
// Missing and cross-tenant rows both return ErrNotFound.
func GetProduct(ctx context.Context, db *gorm.DB, id, shopID string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountProducts returns the total number of products owned by shopID.
func CountProducts(ctx context.Context, db *gorm.DB, shopID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("shop_id = ?", shopID).
		Count(&total).Error
	return total, err
}

// ListProductsPage returns a paginated slice of a shop's products, ordered
// by creation time descending. Use CountProducts for pagination metadata.
func ListProductsPage(ctx context.Context, db *gorm.DB, shopID string, offset, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateProduct persists the mutable fields of p, scoped to the owning shop.
// Returns ErrNotFound when no row matched (missing or cross-tenant) and
// ErrDuplicate on a slug unique violation.
func UpdateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND shop_id = ?", p.ID, p.ShopID).
		Updates(map[string]any{
			"name":        p.Name,
			"slug":        p.Slug,
			"description": p.Description,
			"price_cents": p.PriceCents,
			"image_url":   p.ImageURL,
			"status":      p.Status,
			"is_active":   p.IsActive,
		})
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProduct hard-deletes a product scoped to its owning shop, freeing its
// slug for reallocation. Returns ErrNotFound when no row matched.
func DeleteProduct(ctx context.Context, db *gorm.DB, id, shopID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PublicListProductsByShop returns the publicly visible products of a shop
// (published and active), newest first.
func PublicListProductsByShop(ctx context.Context, db *gorm.DB, shopID string) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("shop_id = ? AND status = ? AND is_active = ?", shopID, domain.StatusPublished, true).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// PublicCountProducts returns the number of publicly visible products across
// all shops (the public catalog).
func PublicCountProducts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("status = ? AND is_active = ?", domain.StatusPublished, true).
		Count(&total).Error
	return total, err
}

// PublicListProductsPage returns a page of the public catalog, newest first.
func PublicListProductsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("status = ? AND is_active = ?", domain.StatusPublished, true).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ProductSlugTaken reports whether candidate is held in the product namespace
// by any product other than excludeID. An empty excludeID means no exclusion.
func ProductSlugTaken(ctx context.Context, db *gorm.DB, candidate, excludeID string) (bool, error) {
	q := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("slug = ?", candidate)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
