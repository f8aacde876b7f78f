package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicing/internal/model"
	"invoicing/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maximum number of invoices returned by a list call
const listLimit = 1000

// --- Interface ---

// InvoiceService is the backend side of the invoice REST contract.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, inv model.Invoice) (model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (model.Invoice, error)
	ListInvoices(ctx context.Context) ([]model.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, inv model.Invoice) (model.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	PurgeInvoices(ctx context.Context) (int64, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	txManager   repository.TransactionManager
	logger      *zap.Logger
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	logger *zap.Logger,
) InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		txManager:   txManager,
		logger:      logger.Named("invoice_service"),
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	if err := inv.Validate(); err != nil {
		return model.Invoice{}, err
	}

	now := s.now().UTC()
	inv.ID = uuid.NewString()
	inv.CreatedAt = &now
	if inv.Date.IsZero() {
		inv.Date = model.NewDate(now)
	}
	finalize(&inv)

	record, err := encodeInvoice(inv)
	if err != nil {
		return model.Invoice{}, err
	}
	record.CreatedAt = now

	if err := s.invoiceRepo.Create(ctx, record); err != nil {
		return model.Invoice{}, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("grand_total", inv.Totals.GrandTotal.StringFixed(DisplayPlaces)),
	)
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (model.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return model.Invoice{}, err
	}

	record, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", id, err)
	}
	return decodeInvoice(record)
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	records, err := s.invoiceRepo.List(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]model.Invoice, 0, len(records))
	for i := range records {
		inv, err := decodeInvoice(&records[i])
		if err != nil {
			// skip documents written under an older schema
			s.logger.Warn("skipping undecodable invoice", zap.String("id", records[i].ID.String()), zap.Error(err))
			continue
		}
		result = append(result, inv)
	}
	return result, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, inv model.Invoice) (model.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return model.Invoice{}, err
	}
	if err := inv.Validate(); err != nil {
		return model.Invoice{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return fmt.Errorf("invoice %s: %w", id, findErr)
		}

		inv.ID = existing.ID.String()
		inv.CreatedAt = createdAtOf(existing)
		finalize(&inv)

		record, encErr := encodeInvoice(inv)
		if encErr != nil {
			return encErr
		}
		if updateErr := s.invoiceRepo.Update(txCtx, record); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return model.Invoice{}, err
	}

	s.logger.Info("invoice updated", zap.String("id", inv.ID))
	return inv, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, invoiceID); err != nil {
		return fmt.Errorf("invoice %s: %w", id, err)
	}
	s.logger.Info("invoice deleted", zap.String("id", id))
	return nil
}

// PurgeInvoices removes every stored invoice, e.g. after an incompatible schema change.
func (s *invoiceService) PurgeInvoices(ctx context.Context) (int64, error) {
	n, err := s.invoiceRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge invoices: %w", err)
	}
	s.logger.Warn("invoices purged", zap.Int64("deleted", n))
	return n, nil
}

// --- Helpers ---

// finalize recomputes every derived field the backend echoes back.
func finalize(inv *model.Invoice) {
	for i := range inv.LineItems {
		inv.LineItems[i].Recompute()
	}

	totals := CalculateTotals(inv.LineItems, inv.ServiceCharges).Round(DisplayPlaces)
	totals.AmountInWords = AmountInWords(totals.GrandTotal)
	if inv.ServiceCharges.Mode() == model.TaxModeSingle {
		inv.ServiceCharges.GSTAmount = totals.GSTOnService
	}
	inv.Totals = &totals
}

// unparseable ids can never match a stored invoice
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invoice %s: %w", id, repository.ErrNotFound)
	}
	return parsed, nil
}

// the document keeps full precision; the column may be truncated by the driver
func createdAtOf(record *model.InvoiceRecord) *time.Time {
	if stored, err := decodeInvoice(record); err == nil && stored.CreatedAt != nil {
		return stored.CreatedAt
	}
	createdAt := record.CreatedAt.UTC()
	return &createdAt
}

func encodeInvoice(inv model.Invoice) (*model.InvoiceRecord, error) {
	doc, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice: %w", err)
	}
	return &model.InvoiceRecord{
		ID:            uuid.MustParse(inv.ID),
		InvoiceNumber: inv.InvoiceNumber,
		Document:      string(doc),
	}, nil
}

func decodeInvoice(record *model.InvoiceRecord) (model.Invoice, error) {
	var inv model.Invoice
	if err := json.Unmarshal([]byte(record.Document), &inv); err != nil {
		return model.Invoice{}, fmt.Errorf("failed to decode invoice %s: %w", record.ID, err)
	}
	inv.ID = record.ID.String()
	return inv, nil
}
