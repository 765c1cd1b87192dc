package archive

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecordModel maps the sales_record table.
type SalesRecordModel struct {
	RecordID      string          `gorm:"primaryKey;size:36"`
	SaleID        string          `gorm:"index;size:36"`
	LinesJSON     string          `gorm:"type:text"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2)"`
	PaymentAmount decimal.Decimal `gorm:"type:decimal(12,2)"`
	Change        decimal.Decimal `gorm:"type:decimal(12,2);column:change_amount"`
	SettledAt     time.Time       `gorm:"index"`
}

func (SalesRecordModel) TableName() string {
	return "sales_record"
}
