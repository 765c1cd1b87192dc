package archive

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"till/internal/service/pos/domain"
)

func TestRecordMapping(t *testing.T) {
	settledAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	record := domain.SalesRecord{
		ID:     "rec-1",
		SaleID: "sale-1",
		Lines: []domain.LineItem{
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("0.99")},
		},
		Total:         decimal.RequireFromString("30.99"),
		PaymentAmount: decimal.RequireFromString("50.00"),
		Change:        decimal.RequireFromString("19.01"),
		SettledAt:     settledAt,
	}

	model, err := ToModel(&record)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", model.RecordID)
	assert.Contains(t, model.LinesJSON, `"p1"`)

	back, err := ToDomain(model)
	require.NoError(t, err)
	assert.Equal(t, record.ID, back.ID)
	assert.Equal(t, record.SaleID, back.SaleID)
	require.Len(t, back.Lines, 2)
	assert.True(t, back.Lines[0].UnitPrice.Equal(record.Lines[0].UnitPrice))
	assert.True(t, back.Total.Equal(record.Total))
	assert.True(t, back.Change.Equal(record.Change))
	assert.True(t, back.SettledAt.Equal(settledAt))
}

func TestToDomainCorruptPayload(t *testing.T) {
	_, err := ToDomain(&SalesRecordModel{RecordID: "rec-1", LinesJSON: "{not json"})
	assert.Error(t, err)

	_, err = ToDomain(&SalesRecordModel{
		RecordID:  "rec-2",
		LinesJSON: `[{"product_id":"p1","quantity":1,"unit_price":"abc"}]`,
	})
	assert.Error(t, err)
}
