package domain

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// LineItem is one cart entry. UnitPrice is frozen at the moment the item
// was added; later catalog changes do not alter what an open cart charges.
type LineItem struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Sale is the aggregate root for one in-progress transaction. It owns its
// line items exclusively; stock reservations are tracked by the catalog
// under the same sale id.
type Sale struct {
	ID        string
	Lines     []LineItem
	State     SaleState
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSale(id string, now time.Time) *Sale {
	return &Sale{
		ID:        id,
		State:     SaleStateOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddLine records qty units of a product at the given price. Re-adding a
// product merges into its existing line and keeps the originally frozen
// price.
func (s *Sale) AddLine(productID string, qty int64, unitPrice decimal.Decimal, now time.Time) error {
	if s.State != SaleStateOpen {
		return errors.Wrapf(ErrInvalidState, "cannot add items to a %s sale", s.State)
	}
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			s.Lines[i].Quantity += qty
			s.UpdatedAt = now
			return nil
		}
	}
	s.Lines = append(s.Lines, LineItem{ProductID: productID, Quantity: qty, UnitPrice: unitPrice})
	s.UpdatedAt = now
	return nil
}

// LineQuantity returns the quantity currently carted for a product, zero
// if the product is not in the cart.
func (s *Sale) LineQuantity(productID string) int64 {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return s.Lines[i].Quantity
		}
	}
	return 0
}

// RemoveLine reduces a line by qty, dropping it entirely when it reaches
// zero. Removing more than is carted fails with ErrNotFound.
func (s *Sale) RemoveLine(productID string, qty int64, now time.Time) error {
	if s.State != SaleStateOpen {
		return errors.Wrapf(ErrInvalidState, "cannot remove items from a %s sale", s.State)
	}
	for i := range s.Lines {
		if s.Lines[i].ProductID != productID {
			continue
		}
		if s.Lines[i].Quantity < qty {
			return errors.Wrapf(ErrNotFound, "sale holds only %d of product %s", s.Lines[i].Quantity, productID)
		}
		s.Lines[i].Quantity -= qty
		if s.Lines[i].Quantity == 0 {
			s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
		}
		s.UpdatedAt = now
		return nil
	}
	return errors.Wrapf(ErrNotFound, "product %s is not in the sale", productID)
}

// Total sums quantity times frozen unit price over all lines. Valid in
// any state.
func (s *Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Lines {
		total = total.Add(s.Lines[i].UnitPrice.Mul(decimal.NewFromInt(s.Lines[i].Quantity)))
	}
	return total
}

// ProductIDs returns the distinct products in the cart in ascending
// order. Settlement acquires stock locks in exactly this order.
func (s *Sale) ProductIDs() []string {
	ids := make([]string, 0, len(s.Lines))
	for i := range s.Lines {
		ids = append(ids, s.Lines[i].ProductID)
	}
	sort.Strings(ids)
	return ids
}

// BeginSettlement moves the sale from Open to Settling, locking out cart
// mutation for the duration of the payment attempt.
func (s *Sale) BeginSettlement(now time.Time) error {
	if s.State != SaleStateOpen {
		return errors.Wrapf(ErrInvalidState, "cannot settle a %s sale", s.State)
	}
	s.State = SaleStateSettling
	s.UpdatedAt = now
	return nil
}

// Reopen reverts a Settling sale to Open after a rejected payment, so the
// caller may retry or cancel explicitly.
func (s *Sale) Reopen(now time.Time) error {
	if s.State != SaleStateSettling {
		return errors.Wrapf(ErrInvalidState, "cannot reopen a %s sale", s.State)
	}
	s.State = SaleStateOpen
	s.UpdatedAt = now
	return nil
}

// MarkSettled makes the sale terminal after its reservations were
// converted to permanent deductions.
func (s *Sale) MarkSettled(now time.Time) error {
	if s.State != SaleStateSettling {
		return errors.Wrapf(ErrInvalidState, "cannot mark a %s sale as settled", s.State)
	}
	s.State = SaleStateSettled
	s.UpdatedAt = now
	return nil
}

// Abort makes the sale terminal without settling. Valid from Open and
// Settling; terminal states are immutable.
func (s *Sale) Abort(now time.Time) error {
	if s.State != SaleStateOpen && s.State != SaleStateSettling {
		return errors.Wrapf(ErrInvalidState, "cannot abort a %s sale", s.State)
	}
	s.State = SaleStateAborted
	s.UpdatedAt = now
	return nil
}
