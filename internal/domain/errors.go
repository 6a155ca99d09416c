package domain

import "errors"

var (
	// Store-level outcomes, mapped from the datastore by the repository layer.
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate row")

	// Business-rule rejections. These halt the caller's flow and are never
	// retried.
	ErrInvalidPromo       = errors.New("invalid promo code")
	ErrPromoAlreadyUsed   = errors.New("promo code already used by this user")
	ErrPromoUsageExceeded = errors.New("promo code usage limit exceeded")

	// ErrCodeSpaceExhausted means every candidate code collided with an
	// existing one. It indicates operational trouble (namespace too small),
	// not user error.
	ErrCodeSpaceExhausted = errors.New("could not generate a unique promo code")
)

var terminalErrors = []error{
	ErrInvalidPromo,
	ErrPromoAlreadyUsed,
	ErrPromoUsageExceeded,
	ErrCodeSpaceExhausted,
}

// IsTerminal reports whether err is a rejection that retrying cannot fix.
func IsTerminal(err error) bool {
	for _, target := range terminalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
