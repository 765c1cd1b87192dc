package application

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"till/internal/service/pos/domain"
	"till/internal/service/pos/infrastructure/memory"
)

// ReportingService is the read-only view over history and catalog.
type ReportingService struct {
	history *memory.HistoryLedger
	catalog *memory.Catalog
	tracer  trace.Tracer
}

func NewReportingService(history *memory.HistoryLedger, catalog *memory.Catalog, tracer trace.Tracer) *ReportingService {
	return &ReportingService{history: history, catalog: catalog, tracer: tracer}
}

// ListHistory returns every settled sale, oldest first.
func (s *ReportingService) ListHistory(ctx context.Context) []domain.SalesRecord {
	_, span := s.tracer.Start(ctx, "app.ListHistory")
	defer span.End()
	return s.history.List()
}

// DailyTotals maps calendar dates to settled revenue.
func (s *ReportingService) DailyTotals(ctx context.Context) map[string]decimal.Decimal {
	_, span := s.tracer.Start(ctx, "app.DailyTotals")
	defer span.End()
	return s.history.DailyTotals()
}

// InventorySnapshot is the current catalog presented as a report view.
func (s *ReportingService) InventorySnapshot(ctx context.Context) []domain.Product {
	_, span := s.tracer.Start(ctx, "app.InventorySnapshot")
	defer span.End()
	return s.catalog.List()
}
