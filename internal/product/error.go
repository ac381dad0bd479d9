package product

import "storefront-be/internal/apperror"

var (
	ErrProductNotFound = apperror.NotFound("product not found")
	ErrAccessDenied    = apperror.Authorization("access denied to this product")
	ErrNoProducts      = apperror.NotFound("no products found")
)
