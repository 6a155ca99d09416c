package config

const (
	// Promo code generation
	DefaultExpirationDays = 30
	DefaultUsageLimit     = 1
	MaxCodeAttempts       = 5

	// Welcome promo
	WelcomePrefix          = "WELCOME"
	WelcomeDiscountPercent = 15

	// Stock at or below this level is critical rather than a warning
	CriticalStockLevel = 2
)
