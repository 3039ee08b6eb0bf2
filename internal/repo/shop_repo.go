// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Shop model
// and the shop-namespace slug probes.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a shop is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On unique-index violations (slug or user_id), CreateShop returns
//     ErrDuplicate so services can drive the bounded retry loop.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-index violation (slug already taken or a
// second shop for the same account). It is the storage-level signal that the
// allocator's check-then-act race was lost and allocation must be re-run.
var ErrDuplicate = errors.New("duplicate")

// IsUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey. glebarez/sqlite often returns
// plain-text errors for UNIQUE violations.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "duplicate key") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateShop inserts a new Shop row owned by userID. The shop ID is a
// randomly generated UUID (string), and CreatedAt is set to UTC. The unique
// indexes on slug and user_id are the final authority on uniqueness: a
// violation of either is reported as ErrDuplicate.
func CreateShop(ctx context.Context, db *gorm.DB, userID, name, slug string) (*domain.Shop, error) {
	s := &domain.Shop{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// GetShopByUser fetches the shop owned by userID, or ErrNotFound.
func GetShopByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Shop, error) {
	var s domain.Shop
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetShopBySlug fetches a shop by its public slug, or ErrNotFound.
// Inactive shops are returned too; public visibility is a service concern.
func GetShopBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Shop, error) {
	var s domain.Shop
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveShop persists all mutable fields of s in one write. Callers that need
// the update to be atomic with other writes run it inside a transaction.
// A slug unique violation (explicit reassignment race) maps to ErrDuplicate.
func SaveShop(ctx context.Context, db *gorm.DB, s *domain.Shop) error {
	err := db.WithContext(ctx).
		Model(&domain.Shop{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":            s.Name,
			"slug":            s.Slug,
			"description":     s.Description,
			"logo_url":        s.LogoURL,
			"whatsapp_number": s.WhatsAppNumber,
			"is_active":       s.IsActive,
		}).Error
	if err != nil && IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// ShopSlugTaken reports whether candidate is held in the shop namespace by
// any shop other than excludeID. An empty excludeID means no exclusion.
func ShopSlugTaken(ctx context.Context, db *gorm.DB, candidate, excludeID string) (bool, error) {
	q := db.WithContext(ctx).
		Model(&domain.Shop{}).
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
