package domain

import "time"

type AlertSeverity string

const (
	SeverityWarning    AlertSeverity = "warning"
	SeverityCritical   AlertSeverity = "critical"
	SeverityOutOfStock AlertSeverity = "out_of_stock"
)

// LowStockAlert flags a product whose stock dropped below the low-stock
// threshold. At most one unacknowledged alert exists per product at any time;
// the store enforces this with a partial unique index, and the service layer
// refreshes the open alert instead of inserting a second one.
type LowStockAlert struct {
	ID             int64
	ProductID      int64
	Threshold      int
	Severity       AlertSeverity
	Acknowledged   bool
	AcknowledgedAt *time.Time
	AcknowledgedBy *int64
	CreatedAt      time.Time
}

// AlertWithProduct is an alert joined with the product's current state for
// admin listings.
type AlertWithProduct struct {
	LowStockAlert
	ProductName  string
	CurrentStock int
}

// AlertSummary counts open alerts by severity.
type AlertSummary struct {
	Warning    int64
	Critical   int64
	OutOfStock int64
	Total      int64
}
