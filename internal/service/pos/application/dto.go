package application

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	ID         string
	Name       string
	UnitPrice  decimal.Decimal
	InitialQty int64
}

// SettleResult is what the settlement engine hands back to the caller on
// success.
type SettleResult struct {
	RecordID string
	Total    decimal.Decimal
	Change   decimal.Decimal
}
