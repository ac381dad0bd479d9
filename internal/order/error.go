package order

import "storefront-be/internal/apperror"

var (
	ErrOrderNotFound = apperror.NotFound("order not found")
	ErrAccessDenied  = apperror.Authorization("not authorized to view this order")
	ErrInvalidStatus = apperror.Validation("invalid order status")
	// ErrAlreadyExists is returned when the checkout already has an order.
	ErrAlreadyExists = apperror.Conflict("order already exists for checkout")
)
