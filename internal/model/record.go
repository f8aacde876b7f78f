package model

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceRecord persists one invoice as a JSON document next to its indexed columns.
type InvoiceRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string    `gorm:"type:varchar(50);index;not null" json:"invoice_number"`
	Document      string    `gorm:"type:text;not null" json:"-"` // encoded Invoice
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (InvoiceRecord) TableName() string {
	return "invoices"
}

// CompanyRecord persists the singleton company profile.
type CompanyRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Document  string    `gorm:"type:text;not null" json:"-"` // encoded CompanyProfile
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CompanyRecord) TableName() string {
	return "company_profiles"
}
