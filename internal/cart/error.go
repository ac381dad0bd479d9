package cart

import "storefront-be/internal/apperror"

var (
	ErrOwnerRequired      = apperror.Validation("user id or guest id is required")
	ErrMergeOwnerRequired = apperror.Validation("user id and guest id are required")
	ErrInvalidQuantity    = apperror.Validation("quantity must be greater than 0")
	ErrNegativeQuantity   = apperror.Validation("quantity must be greater or equal than 0")

	ErrCartNotFound     = apperror.NotFound("cart not found")
	ErrCartItemNotFound = apperror.NotFound("item not found in cart")
)
