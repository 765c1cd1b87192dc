package archive

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"till/internal/service/pos/domain"
)

// GormHistoryArchive is the port.HistoryArchive implementation on MySQL.
// The in-memory ledger stays authoritative; this is a write-through copy
// plus a startup reload.
type GormHistoryArchive struct {
	db *gorm.DB
}

// OpenMySQL dials the database and migrates the archive schema.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mysql")
	}
	if err := db.AutoMigrate(&SalesRecordModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate archive schema")
	}
	return db, nil
}

func NewGormHistoryArchive(db *gorm.DB) *GormHistoryArchive {
	return &GormHistoryArchive{db: db}
}

func (a *GormHistoryArchive) SaveRecord(ctx context.Context, record *domain.SalesRecord) error {
	model, err := ToModel(record)
	if err != nil {
		return err
	}
	if err := a.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrapf(err, "failed to archive record %s", record.ID)
	}
	return nil
}

// ListRecords returns every archived record in settlement order.
func (a *GormHistoryArchive) ListRecords(ctx context.Context) ([]domain.SalesRecord, error) {
	var models []SalesRecordModel
	if err := a.db.WithContext(ctx).Order("settled_at asc").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load archived records")
	}
	records := make([]domain.SalesRecord, 0, len(models))
	for i := range models {
		record, err := ToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
