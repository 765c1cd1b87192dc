package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. OnHand is the physical stock count and is
// never negative; the quantity actually offerable to new sales is
// OnHand minus the open reservations against it.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	OnHand    int64
}

// NewProduct validates and builds a catalog entry.
func NewProduct(id, name string, unitPrice decimal.Decimal, initialQty int64) (Product, error) {
	if id == "" {
		return Product{}, errors.Wrap(ErrInvalidInput, "product id is required")
	}
	if name == "" {
		return Product{}, errors.Wrap(ErrInvalidInput, "product name is required")
	}
	if unitPrice.IsNegative() {
		return Product{}, errors.Wrap(ErrInvalidInput, "unit price must not be negative")
	}
	if initialQty < 0 {
		return Product{}, errors.Wrap(ErrInvalidInput, "initial quantity must not be negative")
	}
	return Product{ID: id, Name: name, UnitPrice: unitPrice, OnHand: initialQty}, nil
}
