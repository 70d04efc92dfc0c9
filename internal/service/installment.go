package service

import (
	"github.com/shopspring/decimal"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
)

const (
	minMonths = 2
	maxMonths = 12
)

var (
	downPaymentRate = decimal.NewFromFloat(0.30)
	monthlyRate     = decimal.NewFromFloat(0.05)
	one             = decimal.NewFromInt(1)
)

// Installment is the computed payment plan for a booking. All values are
// rounded to two decimal places, half away from zero.
type Installment struct {
	DownPayment decimal.Decimal
	Monthly     decimal.Decimal
	Total       decimal.Decimal
}

// CalculateInstallment converts a price, a requested down payment and a
// month count into a payment plan. The down payment is at least 30% of the
// price; a customer may offer more but never less. The remaining balance
// carries a flat 5% surcharge per month, not compounding.
func CalculateInstallment(price, requestedDown decimal.Decimal, months int) (Installment, error) {
	if months < minMonths || months > maxMonths {
		return Installment{}, apperr.Validation("months must be between %d and %d", minMonths, maxMonths)
	}

	minDown := price.Mul(downPaymentRate).Round(2)
	down := minDown
	if requestedDown.IsPositive() && requestedDown.GreaterThan(minDown) {
		down = requestedDown.Round(2)
	}

	remaining := price.Sub(down)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	factor := one.Add(monthlyRate.Mul(decimal.NewFromInt(int64(months))))
	total := remaining.Mul(factor).Round(2)
	monthly := total.Div(decimal.NewFromInt(int64(months))).Round(2)

	return Installment{DownPayment: down, Monthly: monthly, Total: total}, nil
}
