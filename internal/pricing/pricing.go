// Package pricing computes GST-inclusive line amounts and order totals.
// Prices per piece already contain tax; the tax-exclusive amount is
// back-calculated by dividing by (1 + rate). Per-line values stay
// unrounded; rounding to two decimals happens only at the order level.
package pricing

import (
	"math"

	"vastrahub/internal/models"
)

// LineAmounts holds the monetary breakdown of a single order line.
type LineAmounts struct {
	LineTotal      float64 // GST-inclusive
	LineWithoutTax float64
	LineTax        float64
}

// OrderTotals holds the order-level aggregates, rounded to two decimals.
type OrderTotals struct {
	Subtotal   float64 // tax-exclusive
	GST        float64
	GrandTotal float64
}

// ComputeLineAmounts breaks a line down into its total, tax-exclusive
// amount and tax. A NaN or negative gstRatePercent is treated as 0,
// matching the catalog's tolerance for missing tax metadata.
func ComputeLineAmounts(pricePerPiece float64, noOfPieces int, gstRatePercent float64) LineAmounts {
	if math.IsNaN(gstRatePercent) || gstRatePercent < 0 {
		gstRatePercent = 0
	}
	lineTotal := pricePerPiece * float64(noOfPieces)
	lineWithoutTax := lineTotal / (1 + gstRatePercent/100)
	return LineAmounts{
		LineTotal:      lineTotal,
		LineWithoutTax: lineWithoutTax,
		LineTax:        lineTotal - lineWithoutTax,
	}
}

// ComputeOrderTotals sums the per-line amounts and rounds each aggregate
// to two decimals. Rounding only here keeps per-line rounding error from
// compounding.
func ComputeOrderTotals(lines []models.OrderLine) OrderTotals {
	var subtotal, gst, grand float64
	for _, line := range lines {
		subtotal += line.LineWithoutTax
		gst += line.LineTax
		grand += line.LineTotal
	}
	return OrderTotals{
		Subtotal:   Round2(subtotal),
		GST:        Round2(gst),
		GrandTotal: Round2(grand),
	}
}

// Round2 rounds to two decimal places, the persistence boundary for all
// monetary aggregates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
