package model

import (
	"fmt"
	"strings"
)

// DefaultCountry is applied to company profiles that leave the country blank.
const DefaultCountry = "India"

// BankDetails is flattened into the company profile on the wire.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"` // routing code
	Branch        string `json:"branch"`
	BranchCode    string `json:"branch_code,omitempty"`
}

// CompanyProfile is the issuing company; the backend keeps a single record.
type CompanyProfile struct {
	ID           string `json:"id,omitempty"`
	CompanyName  string `json:"company_name" binding:"required"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Website      string `json:"website,omitempty"`
	GSTIN        string `json:"gstin"`
	LogoURL      string `json:"logo_url,omitempty"`
	BankDetails
}

// NewCompanyProfile returns an empty profile with defaults applied.
func NewCompanyProfile() CompanyProfile {
	return CompanyProfile{Country: DefaultCountry}
}

// ApplyDefaults fills defaulted fields left blank.
func (p *CompanyProfile) ApplyDefaults() {
	if strings.TrimSpace(p.Country) == "" {
		p.Country = DefaultCountry
	}
}

// FormattedAddress joins the populated address parts.
func (p CompanyProfile) FormattedAddress() string {
	return formatAddress("", p.AddressLine1, p.AddressLine2, p.City, p.State, p.ZipCode, p.Country)
}

func (p CompanyProfile) Validate() error {
	if strings.TrimSpace(p.CompanyName) == "" {
		return fmt.Errorf("%w: missing company_name", ErrValidation)
	}
	return nil
}
