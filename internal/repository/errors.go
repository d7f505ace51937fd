// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to the right HTTP status. For example, ErrTillClosed means a
// payment arrived while no till session is open, while
// ErrInsufficientStock means a consumption posting asked for more
// units than the product has left.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidState is returned when an operation is attempted against a
// reservation whose lifecycle status does not permit it, such as
// posting a charge to a finalized reservation. Handlers should
// translate this into an HTTP 409 response.
var ErrInvalidState = errors.New("invalid reservation state")

// ErrValidation is returned when input fails a structural check:
// non-positive value, unknown payment method, missing reason on a
// reversal. Handlers should translate this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrInsufficientStock is returned when a consumption posting requests
// more units than the product currently has in stock. Handlers should
// translate this into an HTTP 409 response.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrDiscountExceedsCharges is returned when applying a discount would
// push the active discount total above total charges. Handlers should
// translate this into an HTTP 422 response.
var ErrDiscountExceedsCharges = errors.New("discount exceeds charges")

// ErrPaymentExceedsBalance is returned when a payment is larger than
// the outstanding receivable. Handlers should translate this into an
// HTTP 422 response.
var ErrPaymentExceedsBalance = errors.New("payment exceeds balance")

// ErrTillClosed is returned when a payment is attempted while the
// operator has no open till session. Handlers should translate this
// into an HTTP 403 response with a machine-readable type field so the
// front desk can prompt the operator to open the till.
var ErrTillClosed = errors.New("till closed")

// ErrTillAlreadyOpen is returned when an operator tries to open a till
// session while another one is still open. Handlers should translate
// this into an HTTP 409 response.
var ErrTillAlreadyOpen = errors.New("till already open")

// ErrCapacityExceeded is returned when a guest-count amendment or a
// room transfer would exceed the room's capacity. Handlers should
// translate this into an HTTP 422 response.
var ErrCapacityExceeded = errors.New("room capacity exceeded")

// ErrInvalidDateRange is returned when a checkout-date amendment does
// not leave at least one night after check-in. Handlers should
// translate this into an HTTP 422 response.
var ErrInvalidDateRange = errors.New("invalid date range")

// ErrEntryNotReversible is returned when a reversal targets a
// statement entry that is not a product charge or has already been
// reversed. Handlers should translate this into an HTTP 409 response.
var ErrEntryNotReversible = errors.New("entry not reversible")

// ErrBalanceOutstanding is returned when a paid finalization is
// attempted while the receivable is still positive. Handlers should
// translate this into an HTTP 422 response.
var ErrBalanceOutstanding = errors.New("balance outstanding")

// ErrForbidden is returned when the caller attempts an operation their
// role does not permit, such as a receptionist removing a discount.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as deactivating a product that another
// request just modified. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")
