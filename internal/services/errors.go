package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrOrderNotFound      = errors.New("order not found")
	ErrDelivererNotFound  = errors.New("deliverer not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrTaxIDRequired      = errors.New("tax id is required for online payment")
	ErrPaymentDisabled    = errors.New("online payment is not enabled")
	ErrStorageDisabled    = errors.New("image storage is not configured")
	ErrNotAssigned        = errors.New("order is not assigned to this deliverer")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
