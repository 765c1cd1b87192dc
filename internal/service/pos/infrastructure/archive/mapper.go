package archive

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"till/internal/service/pos/domain"
)

type lineRow struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// ToModel converts a domain record into its database row.
func ToModel(record *domain.SalesRecord) (*SalesRecordModel, error) {
	rows := make([]lineRow, 0, len(record.Lines))
	for _, line := range record.Lines {
		rows = append(rows, lineRow{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.String(),
		})
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal record lines")
	}
	return &SalesRecordModel{
		RecordID:      record.ID,
		SaleID:        record.SaleID,
		LinesJSON:     string(payload),
		Total:         record.Total,
		PaymentAmount: record.PaymentAmount,
		Change:        record.Change,
		SettledAt:     record.SettledAt.UTC(),
	}, nil
}

// ToDomain converts a database row back into a domain record.
func ToDomain(model *SalesRecordModel) (domain.SalesRecord, error) {
	var rows []lineRow
	if err := json.Unmarshal([]byte(model.LinesJSON), &rows); err != nil {
		return domain.SalesRecord{}, errors.Wrapf(err, "corrupt lines payload for record %s", model.RecordID)
	}
	lines := make([]domain.LineItem, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.UnitPrice)
		if err != nil {
			return domain.SalesRecord{}, errors.Wrapf(err, "corrupt unit price for record %s", model.RecordID)
		}
		lines = append(lines, domain.LineItem{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: price,
		})
	}
	return domain.SalesRecord{
		ID:            model.RecordID,
		SaleID:        model.SaleID,
		Lines:         lines,
		Total:         model.Total,
		PaymentAmount: model.PaymentAmount,
		Change:        model.Change,
		SettledAt:     model.SettledAt.UTC(),
	}, nil
}
