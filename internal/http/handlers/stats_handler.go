// Visit stats HTTP handlers.
//
// This file exposes REST endpoints for the visit log:
//   - POST /stats/visit  (public: record one traffic event against a shop)
//   - GET  /stats/me     (owner: totals and per-day buckets, ETag support)
//
// Recording is anonymous and fire-and-forget from the storefront's point of
// view; the handler captures the client IP, user agent, and referrer as
// logged-only attributes.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplink/go-shop-backend/internal/repo"
	"github.com/shoplink/go-shop-backend/internal/services"
)

//
// DTOs
//

// RecordVisitRequest is the JSON payload for recording one visit event.
type RecordVisitRequest struct {
	// Slug identifies the visited shop.
	Slug string `json:"slug" binding:"required,min=1" example:"acme-store"`
	// Action is "view" or "whatsapp_click" ("visit" is accepted as an alias
	// for "view").
	Action string `json:"action" binding:"required,min=1" example:"view"`
}

// DayStat is one UTC calendar-day bucket in the owner's analytics.
type DayStat struct {
	Date  string `json:"date" example:"2024-01-01"`
	Count int64  `json:"count" example:"2"`
}

// ChartPoint is one UTC calendar-day bucket with the per-action split.
type ChartPoint struct {
	Date     string `json:"date" example:"2024-01-01"`
	Visits   int64  `json:"visits" example:"1"`
	WhatsApp int64  `json:"whatsapp" example:"1"`
	Count    int64  `json:"count" example:"2"`
}

// MyStatsResponse is the owner's analytics snapshot.
type MyStatsResponse struct {
	TotalVisits   int64        `json:"total_visits"`
	TotalProducts int64        `json:"total_products"`
	VisitsByDay   []DayStat    `json:"visits_by_day"`
	ChartData     []ChartPoint `json:"chart_data"`
}

//
// Handlers
//

// RecordVisit godoc
// @ID          recordVisit
// @Summary     Record a visit event
// @Description Appends one immutable visit event for the shop with the given
// @Description slug. Anonymous; no authentication required.
// @Tags        Stats
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RecordVisitRequest  true  "Visit event"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Shop not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats/visit [post]
func (h *Handlers) RecordVisit(c *gin.Context) {
	var req RecordVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "slug and action required")
		return
	}

	err := h.statsSvc.Record(
		c.Request.Context(),
		req.Slug,
		req.Action,
		c.ClientIP(),
		c.Request.UserAgent(),
		c.Request.Referer(),
	)
	if err != nil {
		switch err {
		case services.ErrInvalidAction:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action must be view or whatsapp_click")
		case services.ErrShopNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "shop not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// MyStats godoc
// @ID          myStats
// @Summary     Get own visit analytics
// @Description Returns lifetime totals plus sparse ascending UTC-day buckets.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Stats
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {object} handlers.MyStatsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats/me [get]
func (h *Handlers) MyStats(c *gin.Context) {
	ctx := c.Request.Context()
	p := principal(c)

	// ETag pre-check (best effort). The body carries both the visit buckets
	// and total_products, so the tag covers the visit log and the product set.
	var db *gorm.DB
	if svc, okSvc := h.statsSvc.(*services.StatsService); okSvc {
		db = svc.DB
	}
	if db != nil {
		if shop, err := repo.GetShopByUser(ctx, db, p.ID); err == nil {
			vCount, vTS, verr := repo.VisitsStats(ctx, db, shop.ID)
			pCount, pTS, perr := repo.ProductsStats(ctx, db, shop.ID)
			if verr == nil && perr == nil {
				var vts, pts int64
				if vTS != nil {
					vts = vTS.Unix()
				}
				if pTS != nil {
					pts = pTS.Unix()
				}
				etag := fmt.Sprintf(`W/"stats:%s:%d:%d:%d:%d"`, shop.ID, vCount, vts, pCount, pts)
				c.Header("ETag", etag)
				if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	sum, err := h.statsSvc.Summarize(ctx, p)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	days := make([]DayStat, 0, len(sum.Days))
	chart := make([]ChartPoint, 0, len(sum.Days))
	for _, d := range sum.Days {
		total := d.Views + d.WhatsApp
		days = append(days, DayStat{Date: d.Day, Count: total})
		chart = append(chart, ChartPoint{
			Date:     d.Day,
			Visits:   d.Views,
			WhatsApp: d.WhatsApp,
			Count:    total,
		})
	}

	ok(c, http.StatusOK, MyStatsResponse{
		TotalVisits:   sum.TotalVisits,
		TotalProducts: sum.TotalProducts,
		VisitsByDay:   days,
		ChartData:     chart,
	})
}
