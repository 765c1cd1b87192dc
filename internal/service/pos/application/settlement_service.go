package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"till/internal/pkg/clock"
	"till/internal/pkg/logger"
	"till/internal/service/pos/domain"
	"till/internal/service/pos/domain/port"
	"till/internal/service/pos/infrastructure/memory"
)

// SettlementService converts an open sale's reservations into permanent
// stock deductions plus an immutable history record, as one atomic unit.
type SettlementService struct {
	sales    *memory.SaleStore
	catalog  *memory.Catalog
	history  *memory.HistoryLedger
	notifier port.SettlementNotifier
	archive  port.HistoryArchive
	mirror   port.StockMirror
	clock    clock.Clock
	newID    func() string
	tracer   trace.Tracer
}

func NewSettlementService(
	sales *memory.SaleStore,
	catalog *memory.Catalog,
	history *memory.HistoryLedger,
	notifier port.SettlementNotifier,
	archive port.HistoryArchive,
	mirror port.StockMirror,
	clk clock.Clock,
	tracer trace.Tracer,
) *SettlementService {
	return &SettlementService{
		sales:    sales,
		catalog:  catalog,
		history:  history,
		notifier: notifier,
		archive:  archive,
		mirror:   mirror,
		clock:    clk,
		newID:    uuid.NewString,
		tracer:   tracer,
	}
}

// Settle attempts payment for the sale. On an insufficient or invalid
// payment the sale reverts to Open so the caller may retry; on success
// the deductions, the history append and the Settled transition commit
// together or not at all.
func (s *SettlementService) Settle(ctx context.Context, saleID string, payment decimal.Decimal) (SettleResult, error) {
	ctx, span := s.tracer.Start(ctx, "app.Settle")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	var result SettleResult
	var record domain.SalesRecord
	err := s.sales.Mutate(saleID, func(sale *domain.Sale) error {
		now := s.clock.Now()
		if err := sale.BeginSettlement(now); err != nil {
			return err
		}
		if payment.IsNegative() {
			_ = sale.Reopen(s.clock.Now())
			return errors.Wrap(domain.ErrInvalidInput, "payment amount must not be negative")
		}
		total := sale.Total()
		if payment.LessThan(total) {
			_ = sale.Reopen(s.clock.Now())
			return errors.Wrapf(domain.ErrInsufficientPayment, "payment %s is less than total %s", payment, total)
		}

		lines := make([]domain.LineItem, len(sale.Lines))
		copy(lines, sale.Lines)
		record = domain.SalesRecord{
			ID:            s.newID(),
			SaleID:        sale.ID,
			Lines:         lines,
			Total:         total,
			PaymentAmount: payment,
			Change:        payment.Sub(total),
			SettledAt:     now,
		}

		// The history append rides inside the stock critical section so
		// ledger order always matches settlement-commit order.
		err := s.catalog.CommitSale(ctx, saleID, lines, func() error {
			if err := sale.MarkSettled(s.clock.Now()); err != nil {
				return err
			}
			s.history.Append(record)
			return nil
		})
		if err != nil {
			_ = sale.Reopen(s.clock.Now())
			return err
		}

		result = SettleResult{RecordID: record.ID, Total: total, Change: record.Change}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settlement rejected")
		return SettleResult{}, err
	}

	span.AddEvent("sale settled")
	logger.Ctx(ctx).Info().
		Str("sale_id", saleID).
		Str("record_id", result.RecordID).
		Str("total", result.Total.String()).
		Str("change", result.Change.String()).
		Msg("sale settled")

	s.afterCommit(ctx, &record)
	return result, nil
}

// afterCommit runs the best-effort side effects of a settlement: the
// downstream notification, the write-through archive and the stock
// mirror refresh. Failures are logged, never unwound.
func (s *SettlementService) afterCommit(ctx context.Context, record *domain.SalesRecord) {
	if s.notifier != nil {
		if err := s.notifier.SaleSettled(ctx, record); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("record_id", record.ID).Msg("settlement notification failed")
		}
	}
	if s.archive != nil {
		if err := s.archive.SaveRecord(ctx, record); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("record_id", record.ID).Msg("history archive write failed")
		}
	}
	for i := range record.Lines {
		publishAvailability(ctx, s.mirror, s.catalog, record.Lines[i].ProductID)
	}
}
