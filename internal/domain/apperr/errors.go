// internal/domain/apperr/errors.go
package apperr

import "errors"

// Sentinel errors shared across domain services. Handlers match them with
// errors.Is to pick the HTTP status, so every workflow failure wraps exactly
// one of these.
var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInactiveProduct indicates a product excluded from sale because it is deactivated.
	ErrInactiveProduct = errors.New("product is inactive")

	// ErrInsufficientStock indicates the requested quantity exceeds the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCreditLimitExceeded indicates extending a client's debt would exceed their credit limit.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")

	// ErrCreditSaleRequiresClient indicates a fiado sale was requested without a client.
	ErrCreditSaleRequiresClient = errors.New("credit sale requires a client")

	// ErrAlreadyCancelled indicates the sale is already in its terminal cancelled state.
	ErrAlreadyCancelled = errors.New("sale already cancelled")

	// ErrValidation indicates malformed or out-of-range field values.
	ErrValidation = errors.New("validation error")
)
