package port

import (
	"context"

	"till/internal/service/pos/domain"
)

// HistoryArchive persists sales records outside the process. The archive
// is written through after each settlement and read back once at startup;
// it is not consulted on the hot path.
type HistoryArchive interface {
	SaveRecord(ctx context.Context, record *domain.SalesRecord) error
	ListRecords(ctx context.Context) ([]domain.SalesRecord, error)
}
