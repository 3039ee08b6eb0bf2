// Package services – ProductService
//
// This file implements ProductService, the application-level component that
// owns the product lifecycle within a shop. Callers resolve the owning shop
// first (ShopService.Ensure) and pass it explicitly; every repository access
// is then scoped to that shop, so a product belonging to another shop is
// indistinguishable from a missing one.
//
// Product slugs live in their own namespace, shared across all shops, and are
// allocated with the same bounded allocate-commit retry as shop slugs.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include shop/product identifiers and pagination parameters where applicable.

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
	"github.com/shoplink/go-shop-backend/internal/repo"
	"github.com/shoplink/go-shop-backend/internal/slug"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProductService coordinates product persistence, validation, and slug
// allocation for a single shop at a time.
type ProductService struct {
	DB *gorm.DB

	// MaxSlugAttempts bounds the allocate-commit retry loop.
	MaxSlugAttempts int
}

func (s *ProductService) attempts() int {
	if s.MaxSlugAttempts > 0 {
		return s.MaxSlugAttempts
	}
	return defaultSlugAttempts
}

// allocator probes the product namespace through the repository.
func (s *ProductService) allocator() slug.Allocator {
	return slug.Allocator{
		Exists: func(ctx context.Context, _ slug.Namespace, candidate, excludeID string) (bool, error) {
			return repo.ProductSlugTaken(ctx, s.DB, candidate, excludeID)
		},
	}
}

// CreateProductInput carries the fields accepted when creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	ImageURL    string
	Status      string
}

// UpdateProductInput carries the mutable product fields. Nil pointers mean
// "leave unchanged". Slug is only reallocated when the field is present.
type UpdateProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	PriceCents  *int64
	ImageURL    *string
	Status      *string
	IsActive    *bool
}

// Create validates input, allocates a product-namespace slug from the name,
// and inserts the product under the given shop. New products default to draft
// status and active. A lost slug race re-runs allocation up to the retry
// budget, then ErrSlugConflict.
func (s *ProductService) Create(ctx context.Context, shop *domain.Shop, in CreateProductInput) (*domain.Product, error) {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("shop.id", shop.ID)),
	)
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if in.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = domain.StatusDraft
	}
	if !domain.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	alloc := s.allocator()
	for i := 0; i < s.attempts(); i++ {
		candidate, err := alloc.Allocate(ctx, slug.NamespaceProduct, name, "")
		if err != nil {
			return nil, err
		}
		p, err := repo.CreateProduct(ctx, s.DB, &domain.Product{
			ShopID:      shop.ID,
			Name:        name,
			Slug:        candidate,
			Description: strings.TrimSpace(in.Description),
			PriceCents:  in.PriceCents,
			ImageURL:    strings.TrimSpace(in.ImageURL),
			Status:      status,
			IsActive:    true,
		})
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, ErrSlugConflict
}

// Get fetches one of the shop's products by ID. Missing and cross-shop IDs
// both yield ErrProductNotFound.
func (s *ProductService) Get(ctx context.Context, shop *domain.Shop, id string) (*domain.Product, error) {
	p, err := repo.GetProduct(ctx, s.DB, id, shop.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListPage returns a page of the shop's products, newest first, plus the
// total count. It applies defaults for invalid page/pageSize.
func (s *ProductService) ListPage(ctx context.Context, shop *domain.Shop, page, pageSize int) ([]domain.Product, int64, error) {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("shop.id", shop.ID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountProducts(ctx, s.DB, shop.ID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	items, err := repo.ListProductsPage(ctx, s.DB, shop.ID, offset, pageSize)
	return items, total, err
}

// Update applies a partial update to one of the shop's products. The slug is
// immutable unless the payload carries one, in which case the requested value
// is normalized and allocated with the product itself excluded. Field changes
// and a slug change are committed in a single write.
func (s *ProductService) Update(ctx context.Context, shop *domain.Shop, id string, in UpdateProductInput) (*domain.Product, error) {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("shop.id", shop.ID),
			attribute.String("product.id", id),
		),
	)
	defer span.End()

	p, err := s.Get(ctx, shop, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return nil, ErrInvalidPrice
		}
		p.PriceCents = *in.PriceCents
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Status != nil {
		if !domain.ValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		p.Status = *in.Status
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	var requested string
	if in.Slug != nil {
		requested = strings.TrimSpace(*in.Slug)
		if requested == "" {
			return nil, ErrInvalidSlug
		}
		if norm := slug.Make(requested); norm == slug.Fallback &&
			!strings.Contains(strings.ToLower(requested), slug.Fallback) {
			return nil, ErrInvalidSlug
		}
	}

	alloc := s.allocator()
	for i := 0; i < s.attempts(); i++ {
		if in.Slug != nil {
			candidate, aerr := alloc.Allocate(ctx, slug.NamespaceProduct, requested, p.ID)
			if aerr != nil {
				return nil, aerr
			}
			p.Slug = candidate
		}
		uerr := repo.UpdateProduct(ctx, s.DB, p)
		if uerr == nil {
			return p, nil
		}
		if errors.Is(uerr, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		if !errors.Is(uerr, repo.ErrDuplicate) {
			return nil, uerr
		}
		if in.Slug == nil {
			return nil, ErrSlugConflict
		}
	}
	return nil, ErrSlugConflict
}

// Delete hard-deletes one of the shop's products, freeing its slug.
func (s *ProductService) Delete(ctx context.Context, shop *domain.Shop, id string) error {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("shop.id", shop.ID),
			attribute.String("product.id", id),
		),
	)
	defer span.End()

	err := repo.DeleteProduct(ctx, s.DB, id, shop.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}

// PublicByShop lists a shop's publicly visible products (published and
// active), newest first. Callers resolve the shop through the public lookup.
func (s *ProductService) PublicByShop(ctx context.Context, shopID string) ([]domain.Product, error) {
	return repo.PublicListProductsByShop(ctx, s.DB, shopID)
}

// PublicCatalogPage returns a page of the cross-shop public catalog
// (published and active products, newest first) plus the total count.
func (s *ProductService) PublicCatalogPage(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	tr := otel.Tracer("services/ProductService")
	ctx, span := tr.Start(ctx, "PublicCatalogPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.PublicCountProducts(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	items, err := repo.PublicListProductsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
