// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure scenarios
// and map them to HTTP status codes without string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot proceed
// because of conflicting state, such as a duplicate table number
// within a venue. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a session or table is not in a
// status that permits the requested transition, e.g. pausing a
// session that is not active or ending one that is already terminal.
// Handlers should translate this into an HTTP 400 response.
var ErrInvalidState = errors.New("invalid state")

// ErrInsufficientStock is returned when an item purchase requests more
// units than the product currently has on hand. The guarded decrement
// makes this check atomic, so two concurrent purchases cannot
// oversell. Handlers should translate this into an HTTP 400 response.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrTableOccupied is returned when starting a session on a table that
// already has an open session or is flagged occupied.
var ErrTableOccupied = errors.New("table occupied")

// ErrPaymentPending is returned by EndSession while the session's
// payment status is still pending. The handler re-reads the computed
// cost off the session and responds with requiresPaymentConfirmation
// so the client can render the amount due.
var ErrPaymentPending = errors.New("payment confirmation required")
