package repository

import (
	"context"
	"time"

	"invoicing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, record *model.InvoiceRecord) error
	Update(ctx context.Context, record *model.InvoiceRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InvoiceRecord, error)
	List(ctx context.Context, limit int) ([]model.InvoiceRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, record *model.InvoiceRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *invoiceRepository) Update(ctx context.Context, record *model.InvoiceRecord) error {
	res := GetDB(ctx, r.db).Model(&model.InvoiceRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"invoice_number": record.InvoiceNumber,
			"document":       record.Document,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InvoiceRecord, error) {
	var record model.InvoiceRecord
	if err := GetDB(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *invoiceRepository) List(ctx context.Context, limit int) ([]model.InvoiceRecord, error) {
	var records []model.InvoiceRecord
	query := GetDB(ctx, r.db).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InvoiceRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := GetDB(ctx, r.db).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.InvoiceRecord{})
	return res.RowsAffected, res.Error
}
