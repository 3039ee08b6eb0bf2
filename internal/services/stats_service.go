// Package services – StatsService
//
// This file implements StatsService, which owns the append-only visit log and
// its aggregation. Recording is public (resolved by shop slug, no principal),
// appends exactly one immutable row per accepted event, and never mutates
// history. Summaries are per-tenant: the principal's own shop only, bucketed
// by UTC calendar day with sparse output.
//
// Observability: public methods are OpenTelemetry-instrumented.

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
	"github.com/shoplink/go-shop-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// actionAliasVisit is accepted on the wire as a synonym for a plain view.
const actionAliasVisit = "visit"

// Summary is a shop owner's visit analytics snapshot: lifetime totals plus
// sparse ascending day buckets. A principal without a shop row gets the zero
// value.
type Summary struct {
	TotalVisits   int64
	TotalProducts int64
	Days          []repo.DayCount
}

// StatsService records public visit events and aggregates them per shop.
type StatsService struct {
	DB *gorm.DB
}

// Record validates the action, resolves the shop by public slug, and appends
// one visit row stamped with the current UTC time. The "visit" alias maps to
// a view; anything outside the closed action set is rejected before any write.
// IP, user agent, and referrer are stored as-is for the log and ignored by
// aggregation.
func (s *StatsService) Record(ctx context.Context, shopSlug, action, ip, userAgent, referrer string) error {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("shop.slug", shopSlug),
			attribute.String("visit.action", action),
		),
	)
	defer span.End()

	action = strings.ToLower(strings.TrimSpace(action))
	if action == actionAliasVisit {
		action = domain.ActionView
	}
	if !domain.ValidAction(action) {
		return ErrInvalidAction
	}

	shop, err := repo.GetShopBySlug(ctx, s.DB, strings.TrimSpace(shopSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShopNotFound
		}
		return err
	}

	_, err = repo.AppendVisit(ctx, s.DB, shop.ID, action, ip, userAgent, referrer)
	return err
}

// Summarize returns the principal's visit analytics: total visits, total
// products, and per-day buckets split by action. Days with no events produce
// no bucket, and ordering follows the stored timestamps only, so out-of-order
// ingestion aggregates identically. A principal who never touched their shop
// gets an all-zero summary rather than a provisioning side effect.
func (s *StatsService) Summarize(ctx context.Context, p domain.Principal) (*Summary, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Summarize",
		trace.WithAttributes(attribute.String("user.id", p.ID)),
	)
	defer span.End()

	shop, err := repo.GetShopByUser(ctx, s.DB, p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Summary{Days: []repo.DayCount{}}, nil
		}
		return nil, err
	}

	totalVisits, err := repo.CountVisits(ctx, s.DB, shop.ID)
	if err != nil {
		return nil, err
	}
	totalProducts, err := repo.CountProducts(ctx, s.DB, shop.ID)
	if err != nil {
		return nil, err
	}
	days, err := repo.VisitsByDay(ctx, s.DB, shop.ID)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []repo.DayCount{}
	}

	return &Summary{
		TotalVisits:   totalVisits,
		TotalProducts: totalProducts,
		Days:          days,
	}, nil
}
