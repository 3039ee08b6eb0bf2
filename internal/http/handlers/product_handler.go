// Product HTTP handlers.
//
// This file exposes REST endpoints for product resources:
//   - POST   /products        (create, idempotency-aware)
//   - GET    /products        (list own products, paginated, ETag support)
//   - GET    /products/{id}   (fetch one of own products)
//   - PUT    /products/{id}   (partial update, optional slug reassignment)
//   - DELETE /products/{id}   (hard delete)
//   - GET    /public/products (cross-shop public catalog, paginated)
//
// Every authenticated endpoint resolves the caller's shop first and passes it
// down; the service layer scopes all access to that shop, so another tenant's
// product ID behaves exactly like a missing one.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, route, key), the handler returns the recorded
// product and sets `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/domain"
	"github.com/shoplink/go-shop-backend/internal/repo"
	"github.com/shoplink/go-shop-backend/internal/services"
)

//
// DTOs
//

// CreateProductRequest is the JSON payload for creating a product.
type CreateProductRequest struct {
	// Name is the product display name; the slug is derived from it.
	Name string `json:"name" binding:"required,min=1" example:"Blue Mug"`
	// Description is free text shown on the product page.
	Description string `json:"description" example:"Hand-glazed stoneware mug"`
	// PriceCents is the price in minor currency units; must not be negative.
	PriceCents int64 `json:"price_cents" example:"1250"`
	// ImageURL points at an externally hosted product image.
	ImageURL string `json:"image_url" example:"https://cdn.example/mug.png"`
	// Status is draft, published, or archived; defaults to draft.
	Status string `json:"status" example:"draft"`
}

// UpdateProductRequest is the JSON payload for a partial product update.
// Absent fields are left unchanged; a present "slug" field requests an
// explicit slug reassignment.
type UpdateProductRequest struct {
	Name        *string `json:"name" example:"Big Blue Mug"`
	Slug        *string `json:"slug" example:"big-blue-mug"`
	Description *string `json:"description" example:"Now 20% bigger"`
	PriceCents  *int64  `json:"price_cents" example:"1450"`
	ImageURL    *string `json:"image_url" example:"https://cdn.example/mug2.png"`
	Status      *string `json:"status" example:"published"`
	IsActive    *bool   `json:"is_active" example:"true"`
}

// ListProductsResponse contains a page of products and pagination metadata.
type ListProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// ensureShop resolves the caller's shop, writing the error response itself
// when provisioning fails. Returns nil when the request has been answered.
func (h *Handlers) ensureShop(c *gin.Context) *domain.Shop {
	shop, err := h.shopSvc.Ensure(c.Request.Context(), principal(c))
	if err != nil {
		if err == services.ErrSlugConflict {
			fail(c, http.StatusConflict, ErrCodeConflict, "could not allocate a unique shop slug")
			return nil
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return nil
	}
	return shop
}

// failProduct maps service-layer product errors onto the error envelope.
func failProduct(c *gin.Context, err error) {
	switch err {
	case services.ErrProductNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
	case services.ErrEmptyName:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name must not be blank")
	case services.ErrInvalidPrice:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "price_cents must not be negative")
	case services.ErrInvalidStatus:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be draft, published, or archived")
	case services.ErrInvalidSlug:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "requested slug is invalid")
	case services.ErrSlugConflict:
		fail(c, http.StatusConflict, ErrCodeConflict, "slug is already taken")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// idempotencyKey extracts an idempotency key if an upstream middleware has
// already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func idempotencyKey(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}

//
// Handlers
//

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description Creates a product in the current user's shop. A unique slug is
// @Description allocated from the name. Supports idempotency via the
// @Description Idempotency-Key header (same key → same result).
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateProductRequest  true  "Product payload"
//
// @Success     201  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug conflict"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}

	shop := h.ensureShop(c)
	if shop == nil {
		return
	}
	uid := principal(c).ID

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := idempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.productSvc.(*services.ProductService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, uid, c.FullPath(), idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetProduct(ctx, svc.DB, rec.ResourceID, shop.ID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, rec.Status, prev)
					return
				}
			}
		}
	}

	p, err := h.productSvc.Create(ctx, shop, services.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	})
	if err != nil {
		failProduct(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.productSvc.(*services.ProductService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, uid, c.FullPath(), idemKey, p.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, p)
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List own products (paginated)
// @Description Returns a page of the current user's products, newest first.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Products
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListProductsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	shop := h.ensureShop(c)
	if shop == nil {
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.productSvc.(*services.ProductService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ProductsStats(ctx, db, shop.ID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"products:%s:%d:%d"`, shop.ID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.productSvc.ListPage(ctx, shop, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListProductsResponse{
		Products: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get one of own products
// @Description Returns a product owned by the current user's shop. A product
// @Description belonging to another shop yields 404, never 403.
// @Tags        Products
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Product ID (UUID)"      format(uuid)
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	shop := h.ensureShop(c)
	if shop == nil {
		return
	}

	p, err := h.productSvc.Get(c.Request.Context(), shop, id)
	if err != nil {
		failProduct(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Update one of own products
// @Description Applies a partial update. The slug only changes when the
// @Description payload carries a "slug" field.
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Product ID (UUID)"      format(uuid)
// @Param       body       body    handlers.UpdateProductRequest  true  "Fields to update"
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug conflict"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [put]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	shop := h.ensureShop(c)
	if shop == nil {
		return
	}

	p, err := h.productSvc.Update(c.Request.Context(), shop, id, services.UpdateProductInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
		IsActive:    req.IsActive,
	})
	if err != nil {
		failProduct(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete one of own products
// @Description Hard-deletes a product, freeing its slug for reallocation.
// @Tags        Products
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Product ID (UUID)"      format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	shop := h.ensureShop(c)
	if shop == nil {
		return
	}

	if err := h.productSvc.Delete(c.Request.Context(), shop, id); err != nil {
		failProduct(c, err)
		return
	}
	noContent(c)
}

// PublicProducts godoc
// @ID          publicProducts
// @Summary     Browse the public catalog (paginated)
// @Description Returns published, active products across all shops, newest first.
// @Tags        Public
// @Produce     json
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListProductsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /public/products [get]
func (h *Handlers) PublicProducts(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.productSvc.PublicCatalogPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListProductsResponse{
		Products: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
