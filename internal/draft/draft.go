// Package draft holds the editable state of one invoice while a user works on it.
package draft

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"invoicing/internal/model"
	"invoicing/internal/service"

	"github.com/shopspring/decimal"
)

// MaxLineItems caps the rows of one invoice.
const MaxLineItems = model.MaxLineItems

// how far the highest posted index may run past the number of posted rows
const maxIndexGap = 10

const (
	DefaultPaymentTerms = "30 days"
	DefaultDueDays      = 30
	ServiceDescription  = "Service Charges"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field is derived and cannot be set")
	ErrIndexRange    = errors.New("line item index out of range")
	ErrInvalidValue  = errors.New("invalid value")
)

var (
	defaultGSTRate   = decimal.NewFromInt(18)
	defaultSplitRate = decimal.NewFromInt(9)
)

// Draft is a locally mutable invoice. Every mutator keeps the line item
// amounts consistent, so Totals is always current.
type Draft struct {
	inv  model.Invoice
	mode model.TaxMode
}

// New builds a blank draft issued on now's calendar day.
func New(now time.Time, mode model.TaxMode, gen service.InvoiceNumberGenerator) *Draft {
	issued := model.NewDate(now)
	due := issued.AddDays(DefaultDueDays)

	sc := model.ServiceCharge{Description: ServiceDescription}
	if mode == model.TaxModeSingle {
		sc.GSTRate = model.DecimalPtr(defaultGSTRate)
	} else {
		mode = model.TaxModeSplit
		sc.CGSTRate = model.DecimalPtr(defaultSplitRate)
		sc.SGSTRate = model.DecimalPtr(defaultSplitRate)
	}

	var number string
	if gen != nil {
		number = gen.Next(now)
	}

	return &Draft{
		mode: mode,
		inv: model.Invoice{
			InvoiceNumber:  number,
			Date:           issued,
			DueDate:        &due,
			PaymentTerms:   DefaultPaymentTerms,
			LineItems:      []model.LineItem{blankLineItem()},
			ServiceCharges: sc,
		},
	}
}

// FromInvoice wraps a copy of a stored invoice for editing.
func FromInvoice(inv model.Invoice) *Draft {
	d := &Draft{inv: inv.Clone(), mode: inv.ServiceCharges.Mode()}
	if len(d.inv.LineItems) == 0 {
		d.inv.LineItems = []model.LineItem{blankLineItem()}
	}
	for i := range d.inv.LineItems {
		d.inv.LineItems[i].Recompute()
	}
	return d
}

func blankLineItem() model.LineItem {
	return model.LineItem{Quantity: 1, Rate: decimal.Zero, Amount: decimal.Zero}
}

func (d *Draft) Mode() model.TaxMode { return d.mode }

// ID is the server-assigned identifier, empty for unsaved drafts.
func (d *Draft) ID() string { return d.inv.ID }

func (d *Draft) LineItemCount() int { return len(d.inv.LineItems) }

// SetField sets the value at a dotted path such as "customer.name" or "line_items.0.rate".
func (d *Draft) SetField(path, value string) error {
	head, rest, nested := strings.Cut(path, ".")
	if nested {
		switch head {
		case "customer":
			return d.SetCustomerField(rest, value)
		case "service_charges":
			return d.SetServiceChargeField(rest, value)
		case "line_items":
			idx, field, ok := strings.Cut(rest, ".")
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownField, path)
			}
			i, err := strconv.Atoi(idx)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrUnknownField, path)
			}
			return d.UpdateLineItem(i, field, value)
		}
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}

	switch path {
	case "invoice_number":
		d.inv.InvoiceNumber = strings.TrimSpace(value)
	case "date":
		date, err := parseOptionalDate(value)
		if err != nil {
			return err
		}
		if date == nil {
			d.inv.Date = model.Date{}
		} else {
			d.inv.Date = *date
		}
	case "due_date":
		date, err := parseOptionalDate(value)
		if err != nil {
			return err
		}
		d.inv.DueDate = date
	case "payment_terms":
		d.inv.PaymentTerms = value
	case "po_number":
		d.inv.PONumber = value
	case "place_of_supply":
		d.inv.PlaceOfSupply = value
	case "terms_conditions":
		d.inv.TermsConditions = value
	case "notes":
		d.inv.Notes = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	return nil
}

func (d *Draft) SetCustomerField(field, value string) error {
	c := &d.inv.Customer
	switch field {
	case "name":
		c.Name = value
	case "address":
		c.Address = value
	case "address_line1":
		c.AddressLine1 = value
	case "address_line2":
		c.AddressLine2 = value
	case "city":
		c.City = value
	case "state":
		c.State = value
	case "zip_code":
		c.ZipCode = value
	case "country":
		c.Country = value
	case "gst_number":
		c.GSTNumber = value
	case "gstin":
		c.GSTIN = value
	case "phone":
		c.Phone = value
	case "email":
		c.Email = value
	default:
		return fmt.Errorf("%w: customer.%s", ErrUnknownField, field)
	}
	return nil
}

func (d *Draft) SetServiceChargeField(field, value string) error {
	sc := &d.inv.ServiceCharges
	switch field {
	case "description":
		sc.Description = value
	case "hsn_sac":
		sc.HSNSAC = value
	case "amount":
		v, err := coerceMoney(value)
		if err != nil {
			return fmt.Errorf("service_charges.amount: %w", err)
		}
		sc.Amount = v
	case "gst_rate", "cgst_rate", "sgst_rate":
		v, err := coerceRate(value)
		if err != nil {
			return fmt.Errorf("service_charges.%s: %w", field, err)
		}
		switch field {
		case "gst_rate":
			sc.GSTRate = model.DecimalPtr(v)
		case "cgst_rate":
			sc.CGSTRate = model.DecimalPtr(v)
		default:
			sc.SGSTRate = model.DecimalPtr(v)
		}
	case "gst_amount":
		return fmt.Errorf("%w: service_charges.%s", ErrReadOnlyField, field)
	default:
		return fmt.Errorf("%w: service_charges.%s", ErrUnknownField, field)
	}
	return nil
}

// AddLineItem appends a blank item with quantity 1 and rate 0. It reports
// false once the draft already holds MaxLineItems.
func (d *Draft) AddLineItem() bool {
	if len(d.inv.LineItems) >= MaxLineItems {
		return false
	}
	d.inv.LineItems = append(d.inv.LineItems, blankLineItem())
	return true
}

// RemoveLineItem reports whether an item was removed. The last remaining
// item and out-of-range indexes are left alone.
func (d *Draft) RemoveLineItem(i int) bool {
	if len(d.inv.LineItems) <= 1 || i < 0 || i >= len(d.inv.LineItems) {
		return false
	}
	d.inv.LineItems = append(d.inv.LineItems[:i], d.inv.LineItems[i+1:]...)
	return true
}

// UpdateLineItem sets one field of item i and recomputes its amount.
func (d *Draft) UpdateLineItem(i int, field, value string) error {
	if i < 0 || i >= len(d.inv.LineItems) {
		return fmt.Errorf("%w: %d", ErrIndexRange, i)
	}
	li := &d.inv.LineItems[i]
	switch field {
	case "description":
		li.Description = value
	case "hsn_sac":
		li.HSNSAC = value
	case "quantity":
		q, err := coerceQuantity(value)
		if err != nil {
			return fmt.Errorf("line_items.%d.quantity: %w", i, err)
		}
		li.Quantity = q
	case "rate":
		r, err := coerceMoney(value)
		if err != nil {
			return fmt.Errorf("line_items.%d.rate: %w", i, err)
		}
		li.Rate = r
	case "amount":
		return fmt.Errorf("%w: line_items.%d.amount", ErrReadOnlyField, i)
	default:
		return fmt.Errorf("%w: line_items.%d.%s", ErrUnknownField, i, field)
	}
	li.Recompute()
	return nil
}

// Apply replays a posted form onto the draft. The number of line items
// follows the highest posted index; every path is applied even when an
// earlier one fails, and the failures are joined.
func (d *Draft) Apply(values map[string]string) error {
	if n := postedLineItems(values); n > 0 {
		d.resizeLineItems(n)
	}

	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var errs []error
	for _, p := range paths {
		if err := d.SetField(p, values[p]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// postedLineItems returns the row count implied by the posted indexes. An
// index past MaxLineItems, or far past the number of rows actually posted,
// does not count; its fields then fail with ErrIndexRange.
func postedLineItems(values map[string]string) int {
	seen := make(map[int]struct{})
	for p := range values {
		rest, ok := strings.CutPrefix(p, "line_items.")
		if !ok {
			continue
		}
		idx, _, _ := strings.Cut(rest, ".")
		if i, err := strconv.Atoi(idx); err == nil && i >= 0 {
			seen[i] = struct{}{}
		}
	}

	limit := min(MaxLineItems, len(seen)+maxIndexGap)
	n := 0
	for i := range seen {
		if i < limit && i+1 > n {
			n = i + 1
		}
	}
	return n
}

func (d *Draft) resizeLineItems(n int) {
	for len(d.inv.LineItems) < n && d.AddLineItem() {
	}
	d.inv.LineItems = d.inv.LineItems[:n]
}

// Totals derives the current totals at full precision.
func (d *Draft) Totals() model.Totals {
	return service.CalculateTotalsWith(service.StrategyForMode(d.mode), d.inv.LineItems, d.inv.ServiceCharges)
}

// Invoice returns a deep copy carrying display-rounded totals, ready to submit.
func (d *Draft) Invoice() model.Invoice {
	inv := d.inv.Clone()
	totals := d.Totals().Round(service.DisplayPlaces)
	totals.AmountInWords = service.AmountInWords(totals.GrandTotal)
	inv.Totals = &totals
	return inv
}

func parseOptionalDate(value string) (*model.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := model.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return &date, nil
}
