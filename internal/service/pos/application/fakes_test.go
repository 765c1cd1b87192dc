package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"till/internal/keylock"
	"till/internal/pkg/clock"
	"till/internal/service/pos/domain"
	"till/internal/service/pos/infrastructure/memory"
)

// fakeMirror records every availability publish keyed by product id.
type fakeMirror struct {
	mu        sync.Mutex
	published map[string]int64
	forgotten []string
	failWith  error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{published: make(map[string]int64)}
}

func (m *fakeMirror) PublishAvailable(_ context.Context, productID string, available int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.published[productID] = available
	return nil
}

func (m *fakeMirror) Forget(_ context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forgotten = append(m.forgotten, productID)
	return nil
}

func (m *fakeMirror) available(productID string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.published[productID]
	return v, ok
}

// fakeNotifier captures settlement announcements.
type fakeNotifier struct {
	mu      sync.Mutex
	records []domain.SalesRecord
}

func (n *fakeNotifier) SaleSettled(_ context.Context, record *domain.SalesRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, *record)
	return nil
}

// fakeArchive is an in-memory stand-in for the write-through archive.
type fakeArchive struct {
	mu      sync.Mutex
	records []domain.SalesRecord
}

func (a *fakeArchive) SaveRecord(_ context.Context, record *domain.SalesRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, *record)
	return nil
}

func (a *fakeArchive) ListRecords(context.Context) ([]domain.SalesRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.SalesRecord, len(a.records))
	copy(out, a.records)
	return out, nil
}

var testTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	catalog    *memory.Catalog
	sales      *memory.SaleStore
	history    *memory.HistoryLedger
	mirror     *fakeMirror
	notifier   *fakeNotifier
	archive    *fakeArchive
	catalogSvc *CatalogService
	saleSvc    *SaleService
	settleSvc  *SettlementService
	reportSvc  *ReportingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tracer := testTracer()
	clk := clock.NewFixed(testTime)

	f := &fixture{
		catalog:  memory.NewCatalog(memory.NewReservationLedger(), keylock.NewRegistry(time.Second)),
		sales:    memory.NewSaleStore(),
		history:  memory.NewHistoryLedger(time.UTC),
		mirror:   newFakeMirror(),
		notifier: &fakeNotifier{},
		archive:  &fakeArchive{},
	}
	f.catalogSvc = NewCatalogService(f.catalog, f.mirror, tracer)
	f.saleSvc = NewSaleService(f.sales, f.catalog, f.mirror, clk, tracer)
	f.settleSvc = NewSettlementService(f.sales, f.catalog, f.history, f.notifier, f.archive, f.mirror, clk, tracer)
	f.reportSvc = NewReportingService(f.history, f.catalog, tracer)
	return f
}

func testTracer() trace.Tracer {
	return otel.Tracer("test")
}

func (f *fixture) addProduct(t *testing.T, id string, price string, qty int64) {
	t.Helper()
	_, err := f.catalogSvc.AddProduct(context.Background(), CreateProductInput{
		ID:         id,
		Name:       "Product " + id,
		UnitPrice:  decimal.RequireFromString(price),
		InitialQty: qty,
	})
	require.NoError(t, err)
}

func (f *fixture) openSale(t *testing.T) string {
	t.Helper()
	sale, err := f.saleSvc.Open(context.Background())
	require.NoError(t, err)
	return sale.ID
}
