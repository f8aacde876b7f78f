package repository

import (
	"context"

	"invoicing/internal/model"

	"gorm.io/gorm"
)

// CompanyRepository stores the single company profile row.
type CompanyRepository interface {
	Find(ctx context.Context) (*model.CompanyRecord, error)
	Save(ctx context.Context, record *model.CompanyRecord) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Find returns the oldest profile row; there should only ever be one.
func (r *companyRepository) Find(ctx context.Context) (*model.CompanyRecord, error) {
	var record model.CompanyRecord
	if err := GetDB(ctx, r.db).Order("created_at asc").First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// Save inserts a record that was never stored and updates it otherwise.
func (r *companyRepository) Save(ctx context.Context, record *model.CompanyRecord) error {
	if record.CreatedAt.IsZero() {
		return GetDB(ctx, r.db).Create(record).Error
	}
	return GetDB(ctx, r.db).Save(record).Error
}
