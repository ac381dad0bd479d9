package checkout

import "storefront-be/internal/apperror"

var (
	ErrCartEmpty        = apperror.Validation("your cart is empty")
	ErrCheckoutNotFound = apperror.NotFound("checkout not found")
	ErrAlreadyFinalized = apperror.Conflict("checkout already finalized")
	// ErrConcurrentUpdate means the row changed between read and write.
	ErrConcurrentUpdate = apperror.Conflict("checkout was modified concurrently")
)
