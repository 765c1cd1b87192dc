package memory

import (
	"sync"

	"github.com/pkg/errors"

	"till/internal/service/pos/domain"
)

// saleHandle pairs a sale with its own lock. Writers use TryLock so a
// second concurrent mutator of the same sale fails fast instead of
// queueing behind the first.
type saleHandle struct {
	mu   sync.RWMutex
	sale *domain.Sale
}

// SaleStore keeps every sale session ever opened in this process.
// Terminal sales stay readable (their totals remain queryable).
type SaleStore struct {
	mu    sync.RWMutex
	sales map[string]*saleHandle
}

func NewSaleStore() *SaleStore {
	return &SaleStore{sales: make(map[string]*saleHandle)}
}

func (s *SaleStore) Put(sale *domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[sale.ID] = &saleHandle{sale: sale}
}

func (s *SaleStore) handle(id string) (*saleHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sales[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "sale %s", id)
	}
	return h, nil
}

// Mutate runs fn with exclusive ownership of the sale. A concurrent
// mutation attempt on the same sale returns ErrInvalidState immediately.
func (s *SaleStore) Mutate(id string, fn func(*domain.Sale) error) error {
	h, err := s.handle(id)
	if err != nil {
		return err
	}
	if !h.mu.TryLock() {
		return errors.Wrapf(domain.ErrInvalidState, "sale %s is being modified by another caller", id)
	}
	defer h.mu.Unlock()
	return fn(h.sale)
}

// View runs fn with shared read access to the sale.
func (s *SaleStore) View(id string, fn func(*domain.Sale) error) error {
	h, err := s.handle(id)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fn(h.sale)
}
