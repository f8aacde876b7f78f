package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxMode enum constants
const (
	TaxModeSingle TaxMode = "single" // one GST rate on the service charge
	TaxModeSplit  TaxMode = "split"  // separate CGST + SGST rates on the service charge
)

// TaxMode selects how GST is levied on the service charge.
type TaxMode string

// ParseTaxMode maps a config value onto a TaxMode, defaulting to split.
func ParseTaxMode(s string) TaxMode {
	if strings.EqualFold(strings.TrimSpace(s), string(TaxModeSingle)) {
		return TaxModeSingle
	}
	return TaxModeSplit
}

// ErrValidation is wrapped by every Validate failure.
var ErrValidation = errors.New("validation failed")

// Customer is the billed party embedded in an invoice.
type Customer struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address,omitempty"` // single-line address (simple layout)
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
	Country      string `json:"country,omitempty"`
	GSTNumber    string `json:"gst_number,omitempty"` // tax ID (simple layout)
	GSTIN        string `json:"gstin,omitempty"`      // tax ID (split layout)
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// TaxID returns whichever tax identifier is populated.
func (c Customer) TaxID() string {
	if c.GSTIN != "" {
		return c.GSTIN
	}
	return c.GSTNumber
}

// FormattedAddress joins the split address, falling back to the single-line form.
func (c Customer) FormattedAddress() string {
	return formatAddress(c.Address, c.AddressLine1, c.AddressLine2, c.City, c.State, c.ZipCode, c.Country)
}

// LineItem is one billed row. Amount is always Quantity * Rate.
type LineItem struct {
	Description string          `json:"description"`
	HSNSAC      string          `json:"hsn_sac,omitempty"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Recompute restores the amount invariant after quantity or rate changed.
func (li *LineItem) Recompute() {
	li.Amount = li.Rate.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ServiceCharge is the single taxable charge of an invoice.
// Either GSTRate (single mode) or CGSTRate/SGSTRate (split mode) is set.
type ServiceCharge struct {
	Description string           `json:"description"`
	HSNSAC      string           `json:"hsn_sac,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	GSTRate     *decimal.Decimal `json:"gst_rate,omitempty"`   // percentage, e.g. 18
	GSTAmount   *decimal.Decimal `json:"gst_amount,omitempty"` // echoed by single-mode backends
	CGSTRate    *decimal.Decimal `json:"cgst_rate,omitempty"`
	SGSTRate    *decimal.Decimal `json:"sgst_rate,omitempty"`
}

// Mode reports the tax mode implied by the populated rates.
func (sc ServiceCharge) Mode() TaxMode {
	if sc.CGSTRate != nil || sc.SGSTRate != nil {
		return TaxModeSplit
	}
	return TaxModeSingle
}

// Totals is derived from line items and the service charge; never edited directly.
type Totals struct {
	Subtotal      decimal.Decimal  `json:"subtotal"`
	ServiceCharge decimal.Decimal  `json:"service_charge"`
	GSTOnService  *decimal.Decimal `json:"gst_on_service,omitempty"`
	TotalCGST     *decimal.Decimal `json:"total_cgst,omitempty"`
	TotalSGST     *decimal.Decimal `json:"total_sgst,omitempty"`
	TotalGST      decimal.Decimal  `json:"total_gst"`
	GrandTotal    decimal.Decimal  `json:"grand_total"`
	AmountInWords string           `json:"amount_in_words,omitempty"`
}

// Round returns a copy with every amount rounded to places decimals.
func (t Totals) Round(places int32) Totals {
	r := t
	r.Subtotal = t.Subtotal.Round(places)
	r.ServiceCharge = t.ServiceCharge.Round(places)
	r.GSTOnService = roundPtr(t.GSTOnService, places)
	r.TotalCGST = roundPtr(t.TotalCGST, places)
	r.TotalSGST = roundPtr(t.TotalSGST, places)
	r.TotalGST = t.TotalGST.Round(places)
	r.GrandTotal = t.GrandTotal.Round(places)
	return r
}

// Invoice is the full document exchanged with the backend.
type Invoice struct {
	ID              string        `json:"id,omitempty"` // server-assigned
	InvoiceNumber   string        `json:"invoice_number" binding:"required"`
	Date            Date          `json:"date"` // issue date
	DueDate         *Date         `json:"due_date,omitempty"`
	PaymentTerms    string        `json:"payment_terms,omitempty"`
	PONumber        string        `json:"po_number,omitempty"`
	PlaceOfSupply   string        `json:"place_of_supply,omitempty"`
	Customer        Customer      `json:"customer" binding:"required"`
	LineItems       []LineItem    `json:"line_items" binding:"required,min=1,dive"`
	ServiceCharges  ServiceCharge `json:"service_charges"`
	TermsConditions string        `json:"terms_conditions,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Totals          *Totals       `json:"totals,omitempty"`
	CreatedAt       *time.Time    `json:"created_at,omitempty"`
}

// Validate checks the fields a submitted invoice must carry.
func (inv Invoice) Validate() error {
	var missing []string
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		missing = append(missing, "invoice_number")
	}
	if strings.TrimSpace(inv.Customer.Name) == "" {
		missing = append(missing, "customer.name")
	}
	if len(inv.LineItems) == 0 {
		missing = append(missing, "line_items")
	}
	if inv.ServiceCharges.Mode() == TaxModeSplit && strings.TrimSpace(inv.PlaceOfSupply) == "" {
		missing = append(missing, "place_of_supply")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	if len(inv.LineItems) > MaxLineItems {
		return fmt.Errorf("%w: at most %d line items", ErrValidation, MaxLineItems)
	}
	if field := inv.outOfBounds(); field != "" {
		return fmt.Errorf("%w: %s is out of range", ErrValidation, field)
	}
	return nil
}

// outOfBounds names the first numeric input that WithinBounds rejects.
// Line amounts and totals are derived and left out.
func (inv Invoice) outOfBounds() string {
	for i, li := range inv.LineItems {
		if !WithinBounds(li.Rate) {
			return fmt.Sprintf("line_items.%d.rate", i)
		}
	}
	sc := inv.ServiceCharges
	if !WithinBounds(sc.Amount) {
		return "service_charges.amount"
	}
	optional := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"service_charges.gst_rate", sc.GSTRate},
		{"service_charges.gst_amount", sc.GSTAmount},
		{"service_charges.cgst_rate", sc.CGSTRate},
		{"service_charges.sgst_rate", sc.SGSTRate},
	}
	for _, o := range optional {
		if o.value != nil && !WithinBounds(*o.value) {
			return o.name
		}
	}
	return ""
}

// Clone returns a deep copy so callers may mutate it freely.
func (inv Invoice) Clone() Invoice {
	c := inv
	c.LineItems = append([]LineItem(nil), inv.LineItems...)
	c.ServiceCharges = inv.ServiceCharges.clone()
	if inv.DueDate != nil {
		d := *inv.DueDate
		c.DueDate = &d
	}
	if inv.Totals != nil {
		t := *inv.Totals
		c.Totals = &t
	}
	if inv.CreatedAt != nil {
		ts := *inv.CreatedAt
		c.CreatedAt = &ts
	}
	return c
}

func (sc ServiceCharge) clone() ServiceCharge {
	c := sc
	c.GSTRate = copyPtr(sc.GSTRate)
	c.GSTAmount = copyPtr(sc.GSTAmount)
	c.CGSTRate = copyPtr(sc.CGSTRate)
	c.SGSTRate = copyPtr(sc.SGSTRate)
	return c
}

func copyPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func roundPtr(d *decimal.Decimal, places int32) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Round(places)
	return &v
}

func formatAddress(single string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return strings.TrimSpace(single)
	}
	return strings.Join(out, ", ")
}
