package application

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrIdentityExists         = errors.New("identity already exists")
	ErrRegistrationInProgress = errors.New("registration already in progress")
	ErrIdempotencyKeyReused   = errors.New("idempotency key reused with different credentials")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrInvalidResetToken      = errors.New("invalid or expired reset token")
	ErrSessionStoreDisabled   = errors.New("session store not configured")

	ErrCartNotFound      = errors.New("cart not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoShippingOptions = errors.New("no shipping options for cart")
	ErrOrderNotFound     = errors.New("order not found")

	ErrUploadNotConfigured = errors.New("uploads not configured")
	ErrUnsupportedMedia    = errors.New("unsupported media type")
)

// OrderNotPlacedError is returned when Medusa answers cart completion with the cart instead of an order.
type OrderNotPlacedError struct {
	CartID string
	Reason string
}

func (e *OrderNotPlacedError) Error() string {
	if e.Reason == "" {
		return "order not placed for cart " + e.CartID
	}
	return "order not placed for cart " + e.CartID + ": " + e.Reason
}
