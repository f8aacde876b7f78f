package service

import (
	"invoicing/internal/model"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the precision totals are rounded to for display and serialization.
const DisplayPlaces = 2

// TaxStrategy levies GST on the service charge. Line items are never taxed.
type TaxStrategy interface {
	Mode() model.TaxMode
	Apply(sc model.ServiceCharge, totals *model.Totals)
}

// SingleRate applies one GST rate.
type SingleRate struct{}

func (SingleRate) Mode() model.TaxMode { return model.TaxModeSingle }

func (SingleRate) Apply(sc model.ServiceCharge, totals *model.Totals) {
	gst := percentOf(sc.Amount, sc.GSTRate)
	totals.GSTOnService = &gst
	totals.TotalGST = gst
}

// SplitRate applies separate central and state rates.
type SplitRate struct{}

func (SplitRate) Mode() model.TaxMode { return model.TaxModeSplit }

func (SplitRate) Apply(sc model.ServiceCharge, totals *model.Totals) {
	cgst := percentOf(sc.Amount, sc.CGSTRate)
	sgst := percentOf(sc.Amount, sc.SGSTRate)
	totals.TotalCGST = &cgst
	totals.TotalSGST = &sgst
	totals.TotalGST = cgst.Add(sgst)
}

// StrategyForMode returns the strategy for an explicit mode.
func StrategyForMode(mode model.TaxMode) TaxStrategy {
	if mode == model.TaxModeSingle {
		return SingleRate{}
	}
	return SplitRate{}
}

// StrategyFor picks the strategy implied by the service charge's rates.
func StrategyFor(sc model.ServiceCharge) TaxStrategy {
	return StrategyForMode(sc.Mode())
}

// CalculateTotals derives totals at full precision. It has no side effects.
func CalculateTotals(items []model.LineItem, sc model.ServiceCharge) model.Totals {
	return CalculateTotalsWith(StrategyFor(sc), items, sc)
}

// CalculateTotalsWith derives totals using an explicit tax strategy.
func CalculateTotalsWith(strategy TaxStrategy, items []model.LineItem, sc model.ServiceCharge) model.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}

	totals := model.Totals{
		Subtotal:      subtotal,
		ServiceCharge: sc.Amount,
	}
	strategy.Apply(sc, &totals)
	totals.GrandTotal = subtotal.Add(sc.Amount).Add(totals.TotalGST)
	return totals
}

func percentOf(amount decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return amount.Mul(*rate).Div(model.Percent)
}
