package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is the immutable history entry appended when a sale
// settles. Lines are a snapshot with the prices actually charged.
type SalesRecord struct {
	ID            string
	SaleID        string
	Lines         []LineItem
	Total         decimal.Decimal
	PaymentAmount decimal.Decimal
	Change        decimal.Decimal
	SettledAt     time.Time
}
