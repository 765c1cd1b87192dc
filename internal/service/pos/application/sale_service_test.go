package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"till/internal/service/pos/domain"
)

func TestSaleServiceAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("add reserves stock and freezes the price", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		saleID := f.openSale(t)

		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 3))

		available, _ := f.catalogSvc.AvailableQuantity(ctx, "p1")
		assert.Equal(t, int64(2), available)

		// Price change after the add must not alter the carted price.
		_, err := f.catalogSvc.Restock(ctx, "p1", 1)
		require.NoError(t, err)
		total, err := f.saleSvc.Total(ctx, saleID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("30.00")))
	})

	t.Run("re-add merges at the original price", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "9.99", 10)
		saleID := f.openSale(t)

		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 2))
		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 1))

		total, err := f.saleSvc.Total(ctx, saleID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("29.97")))
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		saleID := f.openSale(t)

		assert.ErrorIs(t, f.saleSvc.AddItem(ctx, saleID, "p1", 0), domain.ErrInvalidInput)
		assert.ErrorIs(t, f.saleSvc.AddItem(ctx, saleID, "ghost", 1), domain.ErrNotFound)
		assert.ErrorIs(t, f.saleSvc.AddItem(ctx, "ghost-sale", "p1", 1), domain.ErrNotFound)
		assert.ErrorIs(t, f.saleSvc.AddItem(ctx, saleID, "p1", 6), domain.ErrInsufficientStock)

		// A failed add leaves no partial reservation behind.
		available, _ := f.catalogSvc.AvailableQuantity(ctx, "p1")
		assert.Equal(t, int64(5), available)
	})

	t.Run("add to an aborted sale fails", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		saleID := f.openSale(t)
		require.NoError(t, f.saleSvc.Abort(ctx, saleID))

		assert.ErrorIs(t, f.saleSvc.AddItem(ctx, saleID, "p1", 1), domain.ErrInvalidState)
	})
}

func TestSaleServiceRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("remove releases the reservation", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		saleID := f.openSale(t)
		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 3))

		require.NoError(t, f.saleSvc.RemoveItem(ctx, saleID, "p1", 2))

		available, _ := f.catalogSvc.AvailableQuantity(ctx, "p1")
		assert.Equal(t, int64(4), available)
		total, _ := f.saleSvc.Total(ctx, saleID)
		assert.True(t, total.Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("remove more than carted fails without releasing", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		saleID := f.openSale(t)
		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 2))

		assert.ErrorIs(t, f.saleSvc.RemoveItem(ctx, saleID, "p1", 3), domain.ErrNotFound)
		available, _ := f.catalogSvc.AvailableQuantity(ctx, "p1")
		assert.Equal(t, int64(3), available)
	})
}

func TestSaleServiceAbort(t *testing.T) {
	ctx := context.Background()

	t.Run("abort releases every hold and refreshes the mirror", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		f.addProduct(t, "p2", "2.50", 4)
		saleID := f.openSale(t)
		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 3))
		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p2", 2))

		require.NoError(t, f.saleSvc.Abort(ctx, saleID))

		for _, id := range []string{"p1", "p2"} {
			available, err := f.catalogSvc.AvailableQuantity(ctx, id)
			require.NoError(t, err)
			mirrored, _ := f.mirror.available(id)
			assert.Equal(t, available, mirrored)
		}
		available, _ := f.catalogSvc.AvailableQuantity(ctx, "p1")
		assert.Equal(t, int64(5), available)
	})

	t.Run("abort is not repeatable", func(t *testing.T) {
		f := newFixture(t)
		saleID := f.openSale(t)
		require.NoError(t, f.saleSvc.Abort(ctx, saleID))
		assert.ErrorIs(t, f.saleSvc.Abort(ctx, saleID), domain.ErrInvalidState)
	})

	t.Run("total of an aborted sale stays readable", func(t *testing.T) {
		f := newFixture(t)
		f.addProduct(t, "p1", "10.00", 5)
		saleID := f.openSale(t)
		require.NoError(t, f.saleSvc.AddItem(ctx, saleID, "p1", 2))
		require.NoError(t, f.saleSvc.Abort(ctx, saleID))

		total, err := f.saleSvc.Total(ctx, saleID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("20.00")))
	})
}
