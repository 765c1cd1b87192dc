package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"till/internal/pkg/mq"
	"till/internal/service/pos/domain"
)

// SettlementKafkaAdapter implements port.SettlementNotifier by publishing
// each settled sale as a JSON event, keyed by sale id.
type SettlementKafkaAdapter struct {
	writer *kafka.Writer
}

func NewSettlementKafkaAdapter(writer *kafka.Writer) *SettlementKafkaAdapter {
	return &SettlementKafkaAdapter{writer: writer}
}

type settledLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type saleSettledEvent struct {
	RecordID      string        `json:"record_id"`
	SaleID        string        `json:"sale_id"`
	Lines         []settledLine `json:"lines"`
	Total         string        `json:"total"`
	PaymentAmount string        `json:"payment_amount"`
	Change        string        `json:"change"`
	SettledAt     time.Time     `json:"settled_at"`
}

func (a *SettlementKafkaAdapter) SaleSettled(ctx context.Context, record *domain.SalesRecord) error {
	event := saleSettledEvent{
		RecordID:      record.ID,
		SaleID:        record.SaleID,
		Lines:         make([]settledLine, 0, len(record.Lines)),
		Total:         record.Total.String(),
		PaymentAmount: record.PaymentAmount.String(),
		Change:        record.Change.String(),
		SettledAt:     record.SettledAt,
	}
	for _, line := range record.Lines {
		event.Lines = append(event.Lines, settledLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.String(),
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settlement event")
	}
	if err := mq.ProduceMessage(ctx, a.writer, []byte(record.SaleID), payload); err != nil {
		return errors.Wrap(err, "failed to produce settlement event")
	}
	return nil
}
