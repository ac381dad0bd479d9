package payment

import (
	"errors"

	"storefront-be/internal/apperror"
)

var (
	ErrCheckoutRequired     = apperror.Validation("checkoutId is required")
	ErrPaymentMethodMissing = apperror.Validation("paymentMethodId is required")
	ErrCheckoutAccessDenied = apperror.Authorization("checkout belongs to another user")

	errProviderStatus = errors.New("payment provider returned an error")
)
