// Shop HTTP handlers.
//
// This file exposes REST endpoints for shop resources:
//   - GET  /shops/me              (fetch own shop, provisioning it on first access)
//   - PUT  /shops/me              (update profile, optional slug reassignment)
//   - GET  /shops/{slug}          (public storefront lookup)
//   - GET  /shops/{slug}/products (public storefront catalog)
//   - GET  /utils/check-slug/{slug} (slug availability probe)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shoplink/go-shop-backend/internal/domain"
	"github.com/shoplink/go-shop-backend/internal/services"
	"github.com/shoplink/go-shop-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ShopService defines shop lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ShopService interface {
	// Ensure returns the principal's shop, creating it on first access.
	Ensure(ctx context.Context, p domain.Principal) (*domain.Shop, error)
	// Update applies a partial profile update, provisioning the shop if needed.
	Update(ctx context.Context, p domain.Principal, in services.UpdateShopInput) (*domain.Shop, error)
	// GetBySlug returns the publicly visible shop with the given slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Shop, error)
	// CheckSlug normalizes a candidate and reports availability.
	CheckSlug(ctx context.Context, p domain.Principal, raw string) (string, bool, error)
}

// ProductService defines product lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ProductService interface {
	// Create inserts a new product under the shop.
	Create(ctx context.Context, shop *domain.Shop, in services.CreateProductInput) (*domain.Product, error)
	// Get fetches one of the shop's products by ID.
	Get(ctx context.Context, shop *domain.Shop, id string) (*domain.Product, error)
	// ListPage returns a page of the shop's products and the total count.
	ListPage(ctx context.Context, shop *domain.Shop, page, pageSize int) ([]domain.Product, int64, error)
	// Update applies a partial update to one of the shop's products.
	Update(ctx context.Context, shop *domain.Shop, id string, in services.UpdateProductInput) (*domain.Product, error)
	// Delete removes one of the shop's products.
	Delete(ctx context.Context, shop *domain.Shop, id string) error
	// PublicByShop lists a shop's publicly visible products.
	PublicByShop(ctx context.Context, shopID string) ([]domain.Product, error)
	// PublicCatalogPage returns a page of the cross-shop public catalog.
	PublicCatalogPage(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error)
}

// StatsService defines visit recording and aggregation operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type StatsService interface {
	// Record appends one visit event for the shop with the given public slug.
	Record(ctx context.Context, shopSlug, action, ip, userAgent, referrer string) error
	// Summarize returns the principal's visit analytics.
	Summarize(ctx context.Context, p domain.Principal) (*services.Summary, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for shops, products, and visit stats.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	shopSvc    ShopService
	productSvc ProductService
	statsSvc   StatsService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(shopSvc ShopService, productSvc ProductService, statsSvc StatsService) *Handlers {
	return &Handlers{shopSvc: shopSvc, productSvc: productSvc, statsSvc: statsSvc}
}

// principal extracts the authenticated principal from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-User-ID" and
// "X-User-Name" headers (tests use them), and finally to "demo-user".
// It never touches c.Request if it's nil.
func principal(c *gin.Context) domain.Principal {
	p := domain.Principal{}
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			p.ID = s
		}
	}
	if v, ok := c.Get("userName"); ok {
		if s, ok := v.(string); ok && s != "" {
			p.Name = s
		}
	}
	if c != nil && c.Request != nil {
		if p.ID == "" {
			p.ID = strings.TrimSpace(c.GetHeader("X-User-ID"))
		}
		if p.Name == "" {
			p.Name = strings.TrimSpace(c.GetHeader("X-User-Name"))
		}
	}
	if p.ID == "" {
		p.ID = "demo-user"
	}
	return p
}

//
// DTOs
//

// UpdateShopRequest is the JSON payload for updating the caller's shop
// profile. Absent fields are left unchanged.
type UpdateShopRequest struct {
	// Name is the shop display name; must be non-blank when present.
	Name *string `json:"name" example:"Acme Store"`
	// Slug requests an explicit slug reassignment.
	Slug *string `json:"slug" example:"acme-store"`
	// Description is free text shown on the storefront.
	Description *string `json:"description" example:"Handmade ceramics"`
	// LogoURL points at an externally hosted logo image.
	LogoURL *string `json:"logo_url" example:"https://cdn.example/logo.png"`
	// WhatsAppNumber is the contact number, 8–15 digits.
	WhatsAppNumber *string `json:"whatsapp_number" example:"306912345678"`
	// IsActive toggles public visibility of the storefront.
	IsActive *bool `json:"is_active" example:"true"`
}

// PublicShopResponse is the storefront shape exposed to anonymous callers.
// Owner-only fields (user id, active flag) are withheld.
type PublicShopResponse struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	LogoURL        string `json:"logo_url"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// ShopProductsResponse wraps a public storefront and its visible products.
type ShopProductsResponse struct {
	Shop     PublicShopResponse `json:"shop"`
	Products []domain.Product   `json:"products"`
}

// CheckSlugResponse reports whether a normalized slug candidate is free.
type CheckSlugResponse struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// publicShop projects a shop onto its anonymous-facing shape.
func publicShop(s *domain.Shop) PublicShopResponse {
	return PublicShopResponse{
		Name:           s.Name,
		Slug:           s.Slug,
		Description:    s.Description,
		LogoURL:        s.LogoURL,
		WhatsAppNumber: s.WhatsAppNumber,
	}
}

//
// Handlers
//

// GetMyShop godoc
// @ID          getMyShop
// @Summary     Get own shop
// @Description Returns the current user's shop, creating it on first access.
// @Tags        Shops
// @Produce     json
//
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       X-User-Name  header  string  false "Display name used to derive the initial slug"  example(Acme)
//
// @Success     200  {object}  domain.Shop
// @Failure     409  {object}  handlers.ErrorResponse  "Slug allocation conflict"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/me [get]
func (h *Handlers) GetMyShop(c *gin.Context) {
	shop, err := h.shopSvc.Ensure(c.Request.Context(), principal(c))
	if err != nil {
		if err == services.ErrSlugConflict {
			fail(c, http.StatusConflict, ErrCodeConflict, "could not allocate a unique shop slug")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, shop)
}

// UpdateMyShop godoc
// @ID          updateMyShop
// @Summary     Update own shop
// @Description Applies a partial update to the current user's shop profile.
// @Description A present "slug" field requests an explicit slug reassignment;
// @Description the profile change and the slug change succeed or fail together.
// @Tags        Shops
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.UpdateShopRequest  true  "Fields to update"
//
// @Success     200  {object}  domain.Shop
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug conflict"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/me [put]
func (h *Handlers) UpdateMyShop(c *gin.Context) {
	var req UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	shop, err := h.shopSvc.Update(c.Request.Context(), principal(c), services.UpdateShopInput{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
		WhatsAppNumber: req.WhatsAppNumber,
		IsActive:       req.IsActive,
	})
	if err != nil {
		switch err {
		case services.ErrEmptyName:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name must not be blank")
		case services.ErrInvalidWhatsApp:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "whatsapp number must be 8-15 digits")
		case services.ErrInvalidSlug:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "requested slug is invalid")
		case services.ErrSlugConflict:
			fail(c, http.StatusConflict, ErrCodeConflict, "slug is already taken")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, shop)
}

// GetShop godoc
// @ID          getShop
// @Summary     Get a public storefront
// @Description Returns the public profile of an active shop by slug.
// @Tags        Shops
// @Produce     json
//
// @Param       slug  path  string  true  "Shop slug"  example(acme-store)
//
// @Success     200  {object}  handlers.PublicShopResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/{slug} [get]
func (h *Handlers) GetShop(c *gin.Context) {
	shop, err := h.shopSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if err == services.ErrShopNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "shop not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, publicShop(shop))
}

// GetShopProducts godoc
// @ID          getShopProducts
// @Summary     Get a storefront's catalog
// @Description Returns an active shop's published, active products, newest first.
// @Tags        Shops
// @Produce     json
//
// @Param       slug  path  string  true  "Shop slug"  example(acme-store)
//
// @Success     200  {object}  handlers.ShopProductsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Shop not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /shops/{slug}/products [get]
func (h *Handlers) GetShopProducts(c *gin.Context) {
	ctx := c.Request.Context()

	shop, err := h.shopSvc.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if err == services.ErrShopNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "shop not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	items, err := h.productSvc.PublicByShop(ctx, shop.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Product{}
	}
	ok(c, http.StatusOK, ShopProductsResponse{Shop: publicShop(shop), Products: items})
}

// CheckSlug godoc
// @ID          checkSlug
// @Summary     Check slug availability
// @Description Normalizes the candidate and reports whether it is free in the
// @Description shop namespace, not counting the caller's own shop.
// @Tags        Utils
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       slug       path    string  true  "Candidate slug"         example(acme-store)
//
// @Success     200  {object}  handlers.CheckSlugResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /utils/check-slug/{slug} [get]
func (h *Handlers) CheckSlug(c *gin.Context) {
	norm, available, err := h.shopSvc.CheckSlug(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CheckSlugResponse{Slug: norm, Available: available})
}
