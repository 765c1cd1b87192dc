package port

import (
	"context"

	"till/internal/service/pos/domain"
)

// SettlementNotifier announces settled sales to downstream consumers.
// Delivery is post-commit and best-effort; the history ledger is the
// source of truth.
type SettlementNotifier interface {
	SaleSettled(ctx context.Context, record *domain.SalesRecord) error
}
