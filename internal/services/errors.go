// Package services defines the business logic for shops, products, and visit
// statistics. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrShopNotFound indicates that the requested shop does not exist or is
	// not publicly visible.
	ErrShopNotFound = errors.New("shop not found")

	// ErrProductNotFound indicates that the requested product does not exist
	// or is not accessible to the current tenant. Cross-tenant access is
	// deliberately indistinguishable from a missing row.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyName is returned when a create/update carries an empty display name.
	ErrEmptyName = errors.New("name is required")

	// ErrInvalidWhatsApp is returned when a whatsapp number is not 8–15 digits.
	ErrInvalidWhatsApp = errors.New("whatsapp number must be 8-15 digits")

	// ErrInvalidSlug is returned when an explicit slug reassignment request
	// normalizes to nothing usable.
	ErrInvalidSlug = errors.New("requested slug is invalid")

	// ErrInvalidPrice is returned when a product price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrInvalidStatus is returned when a product status is outside the
	// allowed set (draft, published, archived).
	ErrInvalidStatus = errors.New("status must be draft, published, or archived")

	// ErrInvalidAction is returned when a visit action is outside the closed
	// enumeration (view, whatsapp_click).
	ErrInvalidAction = errors.New("action must be view or whatsapp_click")

	// ErrSlugConflict is returned when the slug uniqueness race exhausted its
	// retry budget. Callers should surface it as a conflict.
	ErrSlugConflict = errors.New("could not allocate a unique slug")
)
