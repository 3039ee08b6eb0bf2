// Package domain defines the persistence models for shops, products, and
// visit events. These types are mapped with GORM and form the core data layer
// of the catalog application.
package domain

import (
	"time"
)

// Visit action kinds. The set is closed: anything else is rejected at the
// service layer and by a DB check constraint.
const (
	ActionView     = "view"
	ActionWhatsApp = "whatsapp_click"
)

// Shop represents a seller's public storefront profile. Each shop belongs to
// exactly one account (UserID is unique) and owns exactly one slug in the
// shop namespace. Shops are never hard-deleted; IsActive gates visibility.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owning account; unique (one shop per account).
//   - Name: display name the slug is derived from.
//   - Slug: unique, URL-safe public identifier (shop namespace).
//   - Description: free-text storefront description.
//   - LogoURL: optional logo location (storage is an external concern).
//   - WhatsAppNumber: contact number, digits only (8–15).
//   - IsActive: deactivation flag; inactive shops are hidden from public reads.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Shop struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID         string    `json:"user_id"         gorm:"type:varchar(64);not null;uniqueIndex:ux_shop_user"`
	Name           string    `json:"name"            gorm:"type:varchar(255);not null"`
	Slug           string    `json:"slug"            gorm:"type:varchar(50);not null;uniqueIndex:ux_shop_slug"`
	Description    string    `json:"description"     gorm:"type:text"`
	LogoURL        string    `json:"logo_url"        gorm:"type:text"`
	WhatsAppNumber string    `json:"whatsapp_number" gorm:"column:whatsapp_number;type:varchar(20);index"`
	IsActive       bool      `json:"is_active"       gorm:"not null;default:true"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Shop.
func (Shop) TableName() string { return "shops" }

// Product statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is one of the closed product statuses.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// Product represents an item published inside a shop. Products belong to
// exactly one shop and own exactly one slug in the product namespace.
//
// Products are hard-deleted: a soft-deleted row would keep holding its slug
// under the unique index, so removal must actually free the identifier.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ShopID: foreign key to the owning shop (indexed).
//   - Name: display name the slug is derived from.
//   - Slug: unique, URL-safe public identifier (product namespace).
//   - Description: free-text product description.
//   - PriceCents: price in minor currency units (avoids float money).
//   - ImageURL: optional image location.
//   - Status: draft, published, or archived (enforced by DB constraint).
//   - IsActive: visibility flag for public listings.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - Shop: FK association, ensures cascade delete/update.
type Product struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ShopID      string    `json:"shop_id"     gorm:"type:char(36);not null;index:idx_shop_products"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Slug        string    `json:"slug"        gorm:"type:varchar(50);not null;uniqueIndex:ux_product_slug"`
	Description string    `json:"description" gorm:"type:text"`
	PriceCents  int64     `json:"price_cents" gorm:"not null;default:0"`
	ImageURL    string    `json:"image_url"   gorm:"type:text"`
	Status      string    `json:"status"      gorm:"type:varchar(10);not null;default:'draft';check:status IN ('draft','published','archived');index"`
	IsActive    bool      `json:"is_active"   gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"  gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Shop is the owning storefront. Products are cascade-deleted if their
	// shop is ever removed at the DB level.
	Shop Shop `json:"-" gorm:"foreignKey:ShopID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Visit is an immutable, append-only record of a single traffic interaction
// against a shop. Rows are never updated or deleted by normal operation;
// aggregation relies only on the stored CreatedAt (UTC) for day bucketing.
//
// IPAddress, UserAgent, and Referrer are logged-only attributes captured from
// the tracking request; aggregation ignores them.
type Visit struct {
	ID        string `json:"id"      gorm:"type:char(36);primaryKey"`
	ShopID    string `json:"shop_id" gorm:"type:char(36);not null;index:idx_shop_action_day,priority:1"`
	Action    string `json:"action"  gorm:"type:varchar(20);not null;check:action IN ('view','whatsapp_click');index:idx_shop_action_day,priority:2"`
	IPAddress string `json:"-"       gorm:"type:varchar(45)"`
	UserAgent string `json:"-"       gorm:"type:text"`
	Referrer  string `json:"-"       gorm:"type:text"`
	// CreatedAt is stamped in UTC at insert time and drives day bucketing.
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_shop_action_day,priority:3"`

	// Shop is the visited storefront. Visits are cascade-deleted with it.
	Shop Shop `json:"-" gorm:"foreignKey:ShopID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Visit.
func (Visit) TableName() string { return "visits" }

// ValidAction reports whether a is one of the closed visit action kinds.
func ValidAction(a string) bool {
	return a == ActionView || a == ActionWhatsApp
}
