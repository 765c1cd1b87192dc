package domain

// SaleState is the lifecycle state of a sale session.
type SaleState string

const (
	SaleStateOpen     SaleState = "OPEN"
	SaleStateSettling SaleState = "SETTLING" // payment in progress, cart locked
	SaleStateSettled  SaleState = "SETTLED"
	SaleStateAborted  SaleState = "ABORTED"
)

// Terminal reports whether the state admits no further transitions.
func (s SaleState) Terminal() bool {
	return s == SaleStateSettled || s == SaleStateAborted
}
