package service

import (
	"context"
	"testing"
	"time"

	"invoicing/internal/model"
	"invoicing/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.InvoiceRecord{}, &model.CompanyRecord{}))
	return db
}

func newTestInvoiceService(t *testing.T) *invoiceService {
	db := newTestDB(t)
	svc := NewInvoiceService(repository.NewInvoiceRepository(db), repository.NewTransactionManager(db), zap.NewNop())
	return svc.(*invoiceService)
}

func splitDraft(number string) model.Invoice {
	due := model.NewDate(time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC))
	return model.Invoice{
		InvoiceNumber: number,
		Date:          model.NewDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		DueDate:       &due,
		PaymentTerms:  "30 days",
		PlaceOfSupply: "Karnataka",
		Customer:      model.Customer{Name: "Globex", City: "Bengaluru", GSTIN: "29ABCDE1234F1Z5"},
		LineItems: []model.LineItem{
			{Description: "Design", HSNSAC: "998311", Quantity: 2, Rate: dec("500"), Amount: dec("1")},
			{Description: "Build", Quantity: 1, Rate: dec("1500")},
		},
		ServiceCharges: model.ServiceCharge{
			Description: "Service Charges",
			Amount:      dec("1000"),
			CGSTRate:    model.DecimalPtr(dec("9")),
			SGSTRate:    model.DecimalPtr(dec("9")),
		},
		TermsConditions: "Payment due in 30 days",
	}
}

func TestInvoiceService_CreateComputesDerivedFields(t *testing.T) {
	svc := newTestInvoiceService(t)

	created, err := svc.CreateInvoice(context.Background(), splitDraft("INV-20240315-001"))
	require.NoError(t, err)

	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)
	require.NotNil(t, created.CreatedAt)
	assertDecimal(t, "1000", created.LineItems[0].Amount)
	assertDecimal(t, "1500", created.LineItems[1].Amount)

	require.NotNil(t, created.Totals)
	assertDecimal(t, "2500", created.Totals.Subtotal)
	assertDecimal(t, "90", *created.Totals.TotalCGST)
	assertDecimal(t, "90", *created.Totals.TotalSGST)
	assertDecimal(t, "3680", created.Totals.GrandTotal)
	assert.Equal(t, "Three Thousand Six Hundred Eighty Rupees Only", created.Totals.AmountInWords)
}

func TestInvoiceService_CreateSingleRateEchoesGSTAmount(t *testing.T) {
	svc := newTestInvoiceService(t)
	draft := splitDraft("INV-1")
	draft.PlaceOfSupply = ""
	draft.ServiceCharges.CGSTRate = nil
	draft.ServiceCharges.SGSTRate = nil
	draft.ServiceCharges.GSTRate = model.DecimalPtr(dec("18"))

	created, err := svc.CreateInvoice(context.Background(), draft)
	require.NoError(t, err)

	require.NotNil(t, created.ServiceCharges.GSTAmount)
	assertDecimal(t, "180", *created.ServiceCharges.GSTAmount)
	assertDecimal(t, "180", *created.Totals.GSTOnService)
	assert.Nil(t, created.Totals.TotalCGST)
}

func TestInvoiceService_CreateValidates(t *testing.T) {
	svc := newTestInvoiceService(t)

	draft := splitDraft("")
	draft.PlaceOfSupply = ""
	_, err := svc.CreateInvoice(context.Background(), draft)

	assert.ErrorIs(t, err, model.ErrValidation)
	assert.ErrorContains(t, err, "invoice_number")
	assert.ErrorContains(t, err, "place_of_supply")
}

func TestInvoiceService_RoundTrip(t *testing.T) {
	svc := newTestInvoiceService(t)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, splitDraft("INV-20240315-002"))
	require.NoError(t, err)

	fetched, err := svc.GetInvoice(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.InvoiceNumber, fetched.InvoiceNumber)
	assert.Equal(t, created.Date.String(), fetched.Date.String())
	assert.Equal(t, created.DueDate.String(), fetched.DueDate.String())
	assert.Equal(t, created.Customer, fetched.Customer)
	assert.Equal(t, created.PlaceOfSupply, fetched.PlaceOfSupply)
	require.Len(t, fetched.LineItems, 2)
	assert.Equal(t, created.LineItems[0].HSNSAC, fetched.LineItems[0].HSNSAC)
	assertDecimal(t, created.LineItems[1].Amount.String(), fetched.LineItems[1].Amount)
	assertDecimal(t, "9", *fetched.ServiceCharges.CGSTRate)
	assertDecimal(t, "3680", fetched.Totals.GrandTotal)
	assert.True(t, created.CreatedAt.Equal(*fetched.CreatedAt))
}

func TestInvoiceService_GetUnknown(t *testing.T) {
	svc := newTestInvoiceService(t)

	_, err := svc.GetInvoice(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.GetInvoice(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInvoiceService_ListNewestFirst(t *testing.T) {
	svc := newTestInvoiceService(t)
	ctx := context.Background()

	clock := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	_, err := svc.CreateInvoice(ctx, splitDraft("INV-OLD"))
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = svc.CreateInvoice(ctx, splitDraft("INV-NEW"))
	require.NoError(t, err)

	invoices, err := svc.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-NEW", invoices[0].InvoiceNumber)
	assert.Equal(t, "INV-OLD", invoices[1].InvoiceNumber)
}

func TestInvoiceService_UpdateKeepsIdentity(t *testing.T) {
	svc := newTestInvoiceService(t)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, splitDraft("INV-A"))
	require.NoError(t, err)

	edit := splitDraft("INV-B")
	edit.ID = "ignored"
	edit.LineItems = append(edit.LineItems, model.LineItem{Description: "Extra", Quantity: 4, Rate: dec("250")})
	updated, err := svc.UpdateInvoice(ctx, created.ID, edit)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(*updated.CreatedAt))
	assertDecimal(t, "3500", updated.Totals.Subtotal)
	assertDecimal(t, "4680", updated.Totals.GrandTotal)

	fetched, err := svc.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-B", fetched.InvoiceNumber)
	assert.Len(t, fetched.LineItems, 3)
}

func TestInvoiceService_UpdateUnknown(t *testing.T) {
	svc := newTestInvoiceService(t)

	_, err := svc.UpdateInvoice(context.Background(), uuid.NewString(), splitDraft("INV-X"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInvoiceService_DeleteAndPurge(t *testing.T) {
	svc := newTestInvoiceService(t)
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, splitDraft("INV-1"))
	require.NoError(t, err)
	_, err = svc.CreateInvoice(ctx, splitDraft("INV-2"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvoice(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteInvoice(ctx, first.ID), repository.ErrNotFound)

	n, err := svc.PurgeInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	invoices, err := svc.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}
