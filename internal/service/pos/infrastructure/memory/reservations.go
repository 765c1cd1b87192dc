package memory

import (
	"sync"

	"github.com/pkg/errors"

	"till/internal/service/pos/domain"
)

// ReservationLedger tracks in-flight stock holds keyed by (sale, product).
// It only ever grows a product's reserved total under that product's
// stock lock (see Catalog.Reserve), which is what keeps the reserved sum
// from exceeding on-hand stock. Releases shrink the total and are safe
// under the ledger's own mutex alone.
type ReservationLedger struct {
	mu        sync.Mutex
	bySale    map[string]map[string]int64
	byProduct map[string]int64
}

func NewReservationLedger() *ReservationLedger {
	return &ReservationLedger{
		bySale:    make(map[string]map[string]int64),
		byProduct: make(map[string]int64),
	}
}

// ProductTotal returns the reserved quantity across all open sales.
func (l *ReservationLedger) ProductTotal(productID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byProduct[productID]
}

// Held returns the quantity a single sale holds for a product.
func (l *ReservationLedger) Held(saleID, productID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bySale[saleID][productID]
}

func (l *ReservationLedger) add(saleID, productID string, qty int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	holds, ok := l.bySale[saleID]
	if !ok {
		holds = make(map[string]int64)
		l.bySale[saleID] = holds
	}
	holds[productID] += qty
	l.byProduct[productID] += qty
}

// remove shrinks a hold. Releasing more than is held fails loudly so
// double-release bugs in callers surface instead of silently passing.
func (l *ReservationLedger) remove(saleID, productID string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	held := l.bySale[saleID][productID]
	if held < qty {
		return errors.Wrapf(domain.ErrNotFound, "sale %s holds %d of product %s, cannot release %d", saleID, held, productID, qty)
	}
	l.shrink(saleID, productID, qty)
	return nil
}

// releaseSale drops every hold of a sale and returns what was released.
func (l *ReservationLedger) releaseSale(saleID string) map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	holds := l.bySale[saleID]
	released := make(map[string]int64, len(holds))
	for productID, qty := range holds {
		released[productID] = qty
		l.byProduct[productID] -= qty
		if l.byProduct[productID] == 0 {
			delete(l.byProduct, productID)
		}
	}
	delete(l.bySale, saleID)
	return released
}

// caller must hold l.mu.
func (l *ReservationLedger) shrink(saleID, productID string, qty int64) {
	holds := l.bySale[saleID]
	holds[productID] -= qty
	if holds[productID] == 0 {
		delete(holds, productID)
	}
	if len(holds) == 0 {
		delete(l.bySale, saleID)
	}
	l.byProduct[productID] -= qty
	if l.byProduct[productID] == 0 {
		delete(l.byProduct, productID)
	}
}
