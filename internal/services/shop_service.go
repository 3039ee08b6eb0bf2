// Package services – ShopService
//
// This file implements the ShopService, which manages the lifecycle of shops.
// A shop is provisioned lazily on first access (Ensure), one per account, with
// a collision-free public slug allocated from the owner's display name. The
// unique indexes on shops.slug and shops.user_id are the final authority on
// uniqueness; the service re-runs allocation a bounded number of times when a
// commit loses the race and then gives up with ErrSlugConflict.
//
// Service-level errors (e.g., ErrShopNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
	"github.com/shoplink/go-shop-backend/internal/repo"
	"github.com/shoplink/go-shop-backend/internal/slug"
)

// defaultShopName is used when the principal carries no display name.
const defaultShopName = "My Shop"

// defaultSlugAttempts bounds the allocate-commit retry loop.
const defaultSlugAttempts = 3

// whatsappRE validates stored WhatsApp numbers: digits only, 8 to 15 of them.
var whatsappRE = regexp.MustCompile(`^\d{8,15}$`)

// ShopRepo defines the repository contract required by ShopService.
// Implementations are responsible for persistence of shop aggregates.
type ShopRepo interface {
	// CreateShop inserts a new shop row for the given user.
	CreateShop(ctx context.Context, db *gorm.DB, userID, name, slug string) (*domain.Shop, error)

	// GetShopByUser fetches the shop owned by userID.
	GetShopByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Shop, error)

	// GetShopBySlug fetches a shop by its public slug.
	GetShopBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Shop, error)

	// SaveShop persists all mutable fields of a shop in one write.
	SaveShop(ctx context.Context, db *gorm.DB, s *domain.Shop) error

	// ShopSlugTaken reports whether a slug is held by a shop other than excludeID.
	ShopSlugTaken(ctx context.Context, db *gorm.DB, candidate, excludeID string) (bool, error)
}

// ShopService provides shop-level operations: lazy provisioning, profile
// updates (including explicit slug reassignment), public lookup, and slug
// availability checks.
type ShopService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the shop repository used by this service.
	Repo ShopRepo

	// MaxSlugAttempts bounds how many times an allocate-commit cycle is
	// retried after losing a uniqueness race.
	MaxSlugAttempts int
}

// NewShopService constructs a ShopService with the default retry budget.
func NewShopService(db *gorm.DB, r ShopRepo) *ShopService {
	return &ShopService{
		DB:              db,
		Repo:            r,
		MaxSlugAttempts: defaultSlugAttempts,
	}
}

// allocator adapts the repository slug probe to the allocator contract.
func (s *ShopService) allocator() slug.Allocator {
	return slug.Allocator{
		Exists: func(ctx context.Context, _ slug.Namespace, candidate, excludeID string) (bool, error) {
			return s.Repo.ShopSlugTaken(ctx, s.DB, candidate, excludeID)
		},
	}
}

func (s *ShopService) attempts() int {
	if s.MaxSlugAttempts > 0 {
		return s.MaxSlugAttempts
	}
	return defaultSlugAttempts
}

// Ensure returns the principal's shop, creating it on first access. Creation
// allocates a slug from the principal's display name and commits under the
// unique indexes; on a violation it re-reads (a concurrent Ensure may have won
// the one-shop-per-user race) and otherwise re-allocates, up to the retry
// budget. Ensure is idempotent: repeated calls return the same row.
func (s *ShopService) Ensure(ctx context.Context, p domain.Principal) (*domain.Shop, error) {
	shop, err := s.Repo.GetShopByUser(ctx, s.DB, p.ID)
	if err == nil {
		return shop, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = defaultShopName
	}

	alloc := s.allocator()
	for i := 0; i < s.attempts(); i++ {
		candidate, aerr := alloc.Allocate(ctx, slug.NamespaceShop, name, "")
		if aerr != nil {
			return nil, aerr
		}
		created, cerr := s.Repo.CreateShop(ctx, s.DB, p.ID, name, candidate)
		if cerr == nil {
			return created, nil
		}
		if !errors.Is(cerr, repo.ErrDuplicate) {
			return nil, cerr
		}
		// The violation may be on user_id: a concurrent Ensure for the same
		// principal committed first. Its row is the answer.
		if winner, gerr := s.Repo.GetShopByUser(ctx, s.DB, p.ID); gerr == nil {
			return winner, nil
		}
	}
	return nil, ErrSlugConflict
}

// UpdateShopInput carries the mutable shop profile fields. Nil pointers mean
// "leave unchanged", so partial updates never clobber absent fields.
type UpdateShopInput struct {
	Name           *string
	Slug           *string
	Description    *string
	LogoURL        *string
	WhatsAppNumber *string
	IsActive       *bool
}

// Update applies a partial profile update to the principal's shop, provisioning
// it first if needed. A requested slug is normalized and allocated with the
// shop itself excluded, then committed together with the other field changes in
// a single write, so a profile update and its slug change succeed or fail as
// one unit.
func (s *ShopService) Update(ctx context.Context, p domain.Principal, in UpdateShopInput) (*domain.Shop, error) {
	shop, err := s.Ensure(ctx, p)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		shop.Name = name
	}
	if in.Description != nil {
		shop.Description = strings.TrimSpace(*in.Description)
	}
	if in.LogoURL != nil {
		shop.LogoURL = strings.TrimSpace(*in.LogoURL)
	}
	if in.WhatsAppNumber != nil {
		num := strings.TrimSpace(*in.WhatsAppNumber)
		if num != "" && !whatsappRE.MatchString(num) {
			return nil, ErrInvalidWhatsApp
		}
		shop.WhatsAppNumber = num
	}
	if in.IsActive != nil {
		shop.IsActive = *in.IsActive
	}

	var requested string
	if in.Slug != nil {
		requested = strings.TrimSpace(*in.Slug)
		if requested == "" {
			return nil, ErrInvalidSlug
		}
		// A request that normalizes to the fallback token carried nothing
		// usable (unless it literally asked for it).
		if norm := slug.Make(requested); norm == slug.Fallback &&
			!strings.Contains(strings.ToLower(requested), slug.Fallback) {
			return nil, ErrInvalidSlug
		}
	}

	alloc := s.allocator()
	for i := 0; i < s.attempts(); i++ {
		if in.Slug != nil {
			candidate, aerr := alloc.Allocate(ctx, slug.NamespaceShop, requested, shop.ID)
			if aerr != nil {
				return nil, aerr
			}
			shop.Slug = candidate
		}
		serr := s.Repo.SaveShop(ctx, s.DB, shop)
		if serr == nil {
			return shop, nil
		}
		if !errors.Is(serr, repo.ErrDuplicate) {
			return nil, serr
		}
		if in.Slug == nil {
			// No slug change in flight, nothing to re-allocate.
			return nil, ErrSlugConflict
		}
	}
	return nil, ErrSlugConflict
}

// GetBySlug returns the publicly visible shop with the given slug.
// Missing and deactivated shops are both reported as ErrShopNotFound.
func (s *ShopService) GetBySlug(ctx context.Context, shopSlug string) (*domain.Shop, error) {
	shop, err := s.Repo.GetShopBySlug(ctx, s.DB, shopSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	if !shop.IsActive {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

// CheckSlug normalizes a candidate and reports whether it is free in the shop
// namespace, not counting the principal's own shop (so a shop owner checking
// their current slug sees it as available).
func (s *ShopService) CheckSlug(ctx context.Context, p domain.Principal, raw string) (normalized string, available bool, err error) {
	excludeID := ""
	if shop, gerr := s.Repo.GetShopByUser(ctx, s.DB, p.ID); gerr == nil {
		excludeID = shop.ID
	} else if !errors.Is(gerr, gorm.ErrRecordNotFound) {
		return "", false, gerr
	}

	normalized = slug.Make(raw)
	taken, err := s.Repo.ShopSlugTaken(ctx, s.DB, normalized, excludeID)
	if err != nil {
		return "", false, err
	}
	return normalized, !taken, nil
}
