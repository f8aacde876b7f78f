package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicing/internal/config"
	"invoicing/internal/database"
	"invoicing/internal/handler"
	"invoicing/internal/model"
	"invoicing/internal/repository"
	"invoicing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newBackend serves the reference REST API on an in-memory database.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	txManager := repository.NewTransactionManager(db)
	router := handler.NewRouter(
		service.NewInvoiceService(repository.NewInvoiceRepository(db), txManager, zap.NewNop()),
		service.NewCompanyService(repository.NewCompanyRepository(db), txManager, zap.NewNop()),
		config.HTTPConfig{CORSOrigins: []string{"*"}},
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv
}

func draft() model.Invoice {
	due := model.NewDate(time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC))
	return model.Invoice{
		InvoiceNumber: "INV-20240315-123",
		Date:          model.NewDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		DueDate:       &due,
		PaymentTerms:  "30 days",
		PONumber:      "PO-77",
		PlaceOfSupply: "Karnataka",
		Customer: model.Customer{
			Name:         "Globex",
			AddressLine1: "1 Residency Road",
			City:         "Bengaluru",
			GSTIN:        "29ABCDE1234F1Z5",
		},
		LineItems: []model.LineItem{
			{Description: "Design", HSNSAC: "998311", Quantity: 2, Rate: decimal.NewFromInt(500), Amount: decimal.NewFromInt(1000)},
			{Description: "Build", Quantity: 1, Rate: decimal.NewFromInt(1500), Amount: decimal.NewFromInt(1500)},
		},
		ServiceCharges: model.ServiceCharge{
			Description: "Service Charges",
			Amount:      decimal.NewFromInt(1000),
			CGSTRate:    model.DecimalPtr(decimal.NewFromInt(9)),
			SGSTRate:    model.DecimalPtr(decimal.NewFromInt(9)),
		},
		TermsConditions: "Net 30",
		Notes:           "Thank you",
	}
}

func TestClient_CreateThenGetRoundTrip(t *testing.T) {
	c := New(newBackend(t).URL, WithLogger(zap.NewNop()))
	ctx := context.Background()
	submitted := draft()

	created, err := c.CreateInvoice(ctx, submitted)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := c.GetInvoice(ctx, created.ID)
	require.NoError(t, err)

	// everything but server-assigned and computed fields survives unchanged
	fetched.ID = ""
	fetched.CreatedAt = nil
	require.NotNil(t, fetched.Totals)
	assert.Equal(t, "Three Thousand Six Hundred Eighty Rupees Only", fetched.Totals.AmountInWords)
	fetched.Totals = nil

	assert.Equal(t, submitted.InvoiceNumber, fetched.InvoiceNumber)
	assert.Equal(t, submitted.Date.String(), fetched.Date.String())
	assert.Equal(t, submitted.DueDate.String(), fetched.DueDate.String())
	assert.Equal(t, submitted.PaymentTerms, fetched.PaymentTerms)
	assert.Equal(t, submitted.PONumber, fetched.PONumber)
	assert.Equal(t, submitted.PlaceOfSupply, fetched.PlaceOfSupply)
	assert.Equal(t, submitted.Customer, fetched.Customer)
	assert.Equal(t, submitted.TermsConditions, fetched.TermsConditions)
	assert.Equal(t, submitted.Notes, fetched.Notes)
	require.Len(t, fetched.LineItems, len(submitted.LineItems))
	for i, li := range submitted.LineItems {
		got := fetched.LineItems[i]
		assert.Equal(t, li.Description, got.Description)
		assert.Equal(t, li.HSNSAC, got.HSNSAC)
		assert.Equal(t, li.Quantity, got.Quantity)
		assert.True(t, li.Rate.Equal(got.Rate))
		assert.True(t, li.Amount.Equal(got.Amount))
	}
	assert.Equal(t, submitted.ServiceCharges.Description, fetched.ServiceCharges.Description)
	assert.True(t, submitted.ServiceCharges.Amount.Equal(fetched.ServiceCharges.Amount))
	assert.True(t, submitted.ServiceCharges.CGSTRate.Equal(*fetched.ServiceCharges.CGSTRate))
	assert.True(t, submitted.ServiceCharges.SGSTRate.Equal(*fetched.ServiceCharges.SGSTRate))
}

func TestClient_ListUpdateDelete(t *testing.T) {
	c := New(newBackend(t).URL)
	ctx := context.Background()

	empty, err := c.ListInvoices(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	created, err := c.CreateInvoice(ctx, draft())
	require.NoError(t, err)

	edit := draft()
	edit.Notes = "Updated"
	updated, err := c.UpdateInvoice(ctx, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Notes)

	list, err := c.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Updated", list[0].Notes)

	require.NoError(t, c.DeleteInvoice(ctx, created.ID))
	list, err = c.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_DeleteUnknownIsNotFound(t *testing.T) {
	c := New(newBackend(t).URL)

	err := c.DeleteInvoice(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, ErrNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Invoice not found", apiErr.Detail)
}

func TestClient_CreateInvalidIsUnprocessable(t *testing.T) {
	c := New(newBackend(t).URL)
	bad := draft()
	bad.Customer.Name = ""

	_, err := c.CreateInvoice(context.Background(), bad)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_CompanyProfile(t *testing.T) {
	c := New(newBackend(t).URL)
	ctx := context.Background()

	profile, err := c.GetCompanyProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)

	saved, err := c.SaveCompanyProfile(ctx, model.CompanyProfile{
		CompanyName: "Acme",
		BankDetails: model.BankDetails{BankName: "HDFC", IFSCCode: "HDFC0000001"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	profile, err = c.GetCompanyProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Acme", profile.CompanyName)
	assert.Equal(t, "India", profile.Country)
	assert.Equal(t, "HDFC0000001", profile.IFSCCode)
}

func TestClient_CompanyNullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/company", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	profile, err := New(srv.URL + "/").GetCompanyProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"fastapi detail", http.StatusBadRequest, `{"detail":"bad input"}`, "bad input"},
		{"fastapi validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"]}]}`, `[{"loc":["body"]}]`},
		{"envelope", http.StatusInternalServerError, `{"status":"error","error":"db down"}`, "db down"},
		{"plain text", http.StatusBadGateway, "upstream unavailable\n", "upstream unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).ListInvoices(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).ListInvoices(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).GetInvoice(ctx, "abc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
