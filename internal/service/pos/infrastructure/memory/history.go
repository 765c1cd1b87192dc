package memory

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"till/internal/service/pos/domain"
)

const dayKeyLayout = "2006-01-02"

// HistoryLedger is the append-only record of settled sales. Appends keep
// a per-day total index current so daily reports never rescan the full
// ledger. No deletion is exposed.
type HistoryLedger struct {
	mu      sync.Mutex
	records []domain.SalesRecord
	daily   map[string]decimal.Decimal
	loc     *time.Location
}

// NewHistoryLedger builds a ledger that groups daily totals in loc
// (reports use one fixed reference zone, UTC unless configured).
func NewHistoryLedger(loc *time.Location) *HistoryLedger {
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryLedger{
		daily: make(map[string]decimal.Decimal),
		loc:   loc,
	}
}

// Append adds a record to the end of the ledger. Callers serialize
// appends with settlement commits, so ledger order is commit order.
func (h *HistoryLedger) Append(record domain.SalesRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	day := record.SettledAt.In(h.loc).Format(dayKeyLayout)
	h.daily[day] = h.daily[day].Add(record.Total)
}

// List returns all records, oldest first.
func (h *HistoryLedger) List() []domain.SalesRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.SalesRecord, len(h.records))
	copy(out, h.records)
	return out
}

// DailyTotals maps calendar dates to the sum of settled totals. Days
// with no sales are absent.
func (h *HistoryLedger) DailyTotals() map[string]decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(h.daily))
	for day, total := range h.daily {
		out[day] = total
	}
	return out
}
