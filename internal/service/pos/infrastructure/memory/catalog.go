package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"till/internal/keylock"
	"till/internal/service/pos/domain"
)

// Catalog owns product state and the reservation ledger. Every operation
// that can shrink availability (reserve, restock bookkeeping, delete,
// settlement deduction) runs under that product's lock from the keylock
// registry, so the check-and-reserve step is atomic per product without
// a global lock. Lock waits are bounded and surface as domain.ErrBusy.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]domain.Product

	holds *ReservationLedger
	locks *keylock.Registry
}

func NewCatalog(holds *ReservationLedger, locks *keylock.Registry) *Catalog {
	return &Catalog{
		products: make(map[string]domain.Product),
		holds:    holds,
		locks:    locks,
	}
}

// AddProduct inserts a validated product. The id must be unused.
func (c *Catalog) AddProduct(p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[p.ID]; ok {
		return errors.Wrapf(domain.ErrDuplicateProduct, "product %s already exists", p.ID)
	}
	c.products[p.ID] = p
	return nil
}

// Get returns a snapshot of one product.
func (c *Catalog) Get(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %s", id)
	}
	return p, nil
}

// List returns a snapshot of every product, ordered by id.
func (c *Catalog) List() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restock increments on-hand stock. delta must be positive; stock never
// shrinks through this path, settlement is the only deduction.
func (c *Catalog) Restock(ctx context.Context, id string, delta int64) (domain.Product, error) {
	if delta <= 0 {
		return domain.Product{}, errors.Wrap(domain.ErrInvalidInput, "restock delta must be positive")
	}
	release, err := c.acquire(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %s", id)
	}
	p.OnHand += delta
	c.products[id] = p
	return p, nil
}

// Delete removes a product that no open sale references.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	release, err := c.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[id]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "product %s", id)
	}
	if reserved := c.holds.ProductTotal(id); reserved > 0 {
		return errors.Wrapf(domain.ErrConflict, "product %s has %d units reserved by open sales", id, reserved)
	}
	delete(c.products, id)
	return nil
}

// Available returns on-hand stock minus open reservations.
func (c *Catalog) Available(id string) (int64, error) {
	c.mu.RLock()
	p, ok := c.products[id]
	c.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(domain.ErrNotFound, "product %s", id)
	}
	return p.OnHand - c.holds.ProductTotal(id), nil
}

// Reserve atomically checks availability and records a hold for the
// sale. Two sales racing for the last units serialize on the product
// lock, so at most one can see the stock as available.
func (c *Catalog) Reserve(ctx context.Context, saleID, productID string, qty int64) error {
	if qty <= 0 {
		return errors.Wrap(domain.ErrInvalidInput, "reservation quantity must be positive")
	}
	release, err := c.acquire(ctx, productID)
	if err != nil {
		return err
	}
	defer release()

	available, err := c.Available(productID)
	if err != nil {
		return err
	}
	if available < qty {
		return errors.Wrapf(domain.ErrInsufficientStock, "product %s has %d available, want %d", productID, available, qty)
	}
	c.holds.add(saleID, productID, qty)
	return nil
}

// Release gives back part of a sale's hold. Releasing more than is held
// fails with ErrNotFound rather than silently succeeding.
func (c *Catalog) Release(saleID, productID string, qty int64) error {
	return c.holds.remove(saleID, productID, qty)
}

// ReleaseAll drops every hold of a sale. Used on abort; never fails and
// is a no-op for sales without holds.
func (c *Catalog) ReleaseAll(saleID string) map[string]int64 {
	return c.holds.releaseSale(saleID)
}

// CommitSale converts a sale's reservations into permanent deductions
// and runs commit (history append plus the settled transition) inside
// the same critical section, holding every involved product lock in
// ascending id order. If commit fails, stock and holds are restored; the
// settlement is all-or-nothing. Availability is not re-validated here:
// the reservations already guarantee sufficient stock.
func (c *Catalog) CommitSale(ctx context.Context, saleID string, lines []domain.LineItem, commit func() error) error {
	ids := make([]string, 0, len(lines))
	for i := range lines {
		ids = append(ids, lines[i].ProductID)
	}
	release, err := c.locks.AcquireAll(ctx, ids)
	if err != nil {
		return errors.Wrap(domain.ErrBusy, "stock is locked by another settlement")
	}
	defer release()

	c.mu.Lock()
	for i := range lines {
		held := c.holds.Held(saleID, lines[i].ProductID)
		if held < lines[i].Quantity {
			c.mu.Unlock()
			return errors.Wrapf(domain.ErrNotFound, "sale %s holds %d of product %s, line needs %d",
				saleID, held, lines[i].ProductID, lines[i].Quantity)
		}
	}
	for i := range lines {
		p := c.products[lines[i].ProductID]
		p.OnHand -= lines[i].Quantity
		c.products[lines[i].ProductID] = p
	}
	c.mu.Unlock()
	released := c.holds.releaseSale(saleID)

	if err := commit(); err != nil {
		c.mu.Lock()
		for i := range lines {
			p := c.products[lines[i].ProductID]
			p.OnHand += lines[i].Quantity
			c.products[lines[i].ProductID] = p
		}
		c.mu.Unlock()
		for productID, qty := range released {
			c.holds.add(saleID, productID, qty)
		}
		return err
	}
	return nil
}

func (c *Catalog) acquire(ctx context.Context, productID string) (func(), error) {
	release, err := c.locks.Acquire(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrBusy, "product %s is locked", productID)
	}
	return release, nil
}
