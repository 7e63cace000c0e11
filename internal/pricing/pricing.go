// Package pricing computes contract prices, down payment terms and bank
// amortization for a unit.
package pricing

import (
	"fmt"
	"math"

	"salesdesk/server/internal/models"
)

// Bank loan terms in years.
const (
	Term15Years = 15
	Term20Years = 20
)

// Compute derives every payment figure from a list price and inputs. It is
// pure and safe for concurrent use. Amounts are not rounded.
func Compute(listPrice float64, in models.PricingInputs) models.PricingResult {
	tcp := listPrice * (1 - in.DiscountPct/100)
	downPayment := tcp * in.DownPaymentPct / 100
	netDownPayment := math.Max(0, downPayment-in.ReservationFee)

	var monthly float64
	if in.MonthsToPay > 0 {
		monthly = netDownPayment / float64(in.MonthsToPay)
	}

	balance := math.Max(0, tcp-downPayment)

	return models.PricingResult{
		ListPrice:           listPrice,
		TotalContractPrice:  tcp,
		DownPaymentAmount:   downPayment,
		NetDownPayment:      netDownPayment,
		DownPaymentMonthly:  monthly,
		ClosingFee:          tcp * in.ClosingFeePct / 100,
		BankFinancedBalance: balance,
		MonthlyPayment15Yr:  Amortize(balance, in.Rate15Yr, Term15Years),
		MonthlyPayment20Yr:  Amortize(balance, in.Rate20Yr, Term20Years),
	}
}

// Amortize returns the level monthly payment that repays principal over
// years at a fixed annual rate (in percent).
func Amortize(principal, annualRate float64, years int) float64 {
	n := years * 12
	if n <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / float64(n)
	}
	return principal * (r / (1 - math.Pow(1+r, -float64(n))))
}

// Schedule lists the month-by-month split of each payment into interest and
// principal. The final balance is clamped at zero.
func Schedule(principal, annualRate float64, years int) ([]models.ScheduleEntry, error) {
	if years <= 0 {
		return nil, fmt.Errorf("term must be at least one year")
	}
	if principal < 0 || annualRate < 0 {
		return nil, fmt.Errorf("principal and rate must not be negative")
	}

	n := years * 12
	r := annualRate / 100 / 12
	payment := Amortize(principal, annualRate, years)

	entries := make([]models.ScheduleEntry, 0, n)
	balance := principal
	for month := 1; month <= n; month++ {
		interest := balance * r
		principalPart := payment - interest
		if month == n {
			// absorb floating point residue in the last payment
			principalPart = balance
		}
		balance = math.Max(0, balance-principalPart)
		entries = append(entries, models.ScheduleEntry{
			Month:     month,
			Payment:   payment,
			Interest:  interest,
			Principal: principalPart,
			Balance:   balance,
		})
	}
	return entries, nil
}
