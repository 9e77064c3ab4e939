// Package finance computes sale and repair money figures from already
// validated inputs. Every function is pure and rounds to 2 decimals at
// each composition step, so chained calculations reproduce the same
// rounding as doing each step independently.
package finance

import (
	"fmt"
	"math"
)

// Line is one quantity/price pair of a sale or repair
type Line struct {
	Qty       int
	UnitPrice float64
}

// Round2 rounds to currency-minor-unit precision (2 decimals)
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// SaleTotal returns the rounded sum of qty*unit_price over all lines.
// A sale with no lines is an error.
func SaleTotal(lines []Line) (float64, error) {
	if len(lines) == 0 {
		return 0, fmt.Errorf("sale has no items")
	}
	total := 0.0
	for _, l := range lines {
		total += Round2(float64(l.Qty) * l.UnitPrice)
	}
	return Round2(total), nil
}

// RepairTotal returns the rounded sum of qty*unit_price over all parts.
// A repair with no parts costs 0 (diagnosis-only orders are normal).
func RepairTotal(parts []Line) float64 {
	total := 0.0
	for _, p := range parts {
		total += Round2(float64(p.Qty) * p.UnitPrice)
	}
	return Round2(total)
}

// Profit is revenue minus cost, rounded
func Profit(revenue, cost float64) float64 {
	return Round2(revenue - cost)
}

// Tax computes the tax on amount at ratePercent (0-100)
func Tax(amount, ratePercent float64) (float64, error) {
	if ratePercent < 0 || ratePercent > 100 {
		return 0, fmt.Errorf("tax rate must be between 0 and 100, got %v", ratePercent)
	}
	return Round2(amount * ratePercent / 100), nil
}

// ApplyDiscount reduces amount by percent (0-100), never below zero
func ApplyDiscount(amount, percent float64) (float64, error) {
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("discount percent must be between 0 and 100, got %v", percent)
	}
	discounted := Round2(amount - amount*percent/100)
	if discounted < 0 {
		return 0, nil
	}
	return discounted, nil
}

// TotalWithTax returns amount plus tax at ratePercent
func TotalWithTax(amount, ratePercent float64) (float64, error) {
	tax, err := Tax(amount, ratePercent)
	if err != nil {
		return 0, err
	}
	return Round2(amount + tax), nil
}

// TotalWithDiscountThenTax applies the discount first, then taxes the
// discounted amount.
func TotalWithDiscountThenTax(amount, discountPercent, taxRatePercent float64) (float64, error) {
	discounted, err := ApplyDiscount(amount, discountPercent)
	if err != nil {
		return 0, err
	}
	return TotalWithTax(discounted, taxRatePercent)
}

// Margin is profit as a percentage of revenue; 0 when revenue is 0
func Margin(revenue, cost float64) float64 {
	if revenue == 0 {
		return 0.0
	}
	return Round2(Profit(revenue, cost) / revenue * 100)
}
