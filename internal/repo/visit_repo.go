// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// Visit log and its day-bucketed aggregation.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
)

// DayCount is one UTC calendar-day bucket of a shop's visit log, with the
// total split by action kind. Day is formatted YYYY-MM-DD.
type DayCount struct {
	Day      string `gorm:"column:day"`
	Views    int64  `gorm:"column:views"`
	WhatsApp int64  `gorm:"column:whatsapp"`
}

// AppendVisit inserts one immutable visit row for shopID. The timestamp is
// stamped here in UTC; rows are never updated afterwards.
func AppendVisit(ctx context.Context, db *gorm.DB, shopID, action, ip, userAgent, referrer string) (*domain.Visit, error) {
	v := &domain.Visit{
		ID:        uuid.NewString(),
		ShopID:    shopID,
		Action:    action,
		IPAddress: ip,
		UserAgent: userAgent,
		Referrer:  referrer,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// CountVisits returns the total number of visit rows for shopID.
func CountVisits(ctx context.Context, db *gorm.DB, shopID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Visit{}).
		Where("shop_id = ?", shopID).
		Count(&total).Error
	return total, err
}

// VisitsByDay groups a shop's visits by UTC calendar day (timestamp truncated
// to its date component, no timezone shifting) and splits each bucket by
// action kind. Days with zero events produce no row (sparse output), and the
// result is ordered ascending by date.
//
// Correctness does not depend on insertion order: only the stored CreatedAt
// drives bucketing, so concurrent out-of-order appends aggregate the same.
func VisitsByDay(ctx context.Context, db *gorm.DB, shopID string) ([]DayCount, error) {
	var out []DayCount
	err := db.WithContext(ctx).
		Model(&domain.Visit{}).
		Select(
			"date(created_at) AS day, "+
				"SUM(CASE WHEN action = ? THEN 1 ELSE 0 END) AS views, "+
				"SUM(CASE WHEN action = ? THEN 1 ELSE 0 END) AS whatsapp",
			domain.ActionView, domain.ActionWhatsApp,
		).
		Where("shop_id = ?", shopID).
		Group("day").
		Order("day asc").
		Scan(&out).Error
	return out, err
}
