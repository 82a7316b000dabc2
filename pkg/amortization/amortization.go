// Package amortization computes constant-installment (French) loan schedules.
package amortization

import (
	"time"

	"retailbank-backoffice/pkg/clock"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Row is one generated installment. Amount and RemainingAmount start equal;
// the remaining amount is only reduced when payments are applied.
type Row struct {
	Number          int
	DueDate         time.Time
	Amount          decimal.Decimal
	RemainingAmount decimal.Decimal
	Interest        decimal.Decimal
	Principal       decimal.Decimal
}

// MonthlyRate converts an annual percentage (15.5 for 15.5%) to a monthly fraction.
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(hundred).Div(twelve)
}

// Installment returns the constant monthly payment rounded to cents.
// A zero rate degenerates to principal/term.
func Installment(principal, annualPercent decimal.Decimal, term int) decimal.Decimal {
	if term <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(term))
	r := MonthlyRate(annualPercent)
	if r.IsZero() {
		return principal.DivRound(n, 2)
	}
	f := one.Add(r).Pow(n)
	return principal.Mul(r).Mul(f).Div(f.Sub(one)).Round(2)
}

// TotalRepayable is the sum of every installment over the whole term.
func TotalRepayable(principal, annualPercent decimal.Decimal, term int) decimal.Decimal {
	return Installment(principal, annualPercent, term).Mul(decimal.NewFromInt(int64(term)))
}

// GenerateSchedule builds rows 1..term with due dates start+i months.
func GenerateSchedule(principal, annualPercent decimal.Decimal, term int, start time.Time) []Row {
	inst := Installment(principal, annualPercent, term)
	rows := make([]Row, 0, term)
	for i, split := range Split(principal, annualPercent, inst, term) {
		rows = append(rows, Row{
			Number:          i + 1,
			DueDate:         clock.AddMonths(start, i+1),
			Amount:          inst,
			RemainingAmount: inst,
			Interest:        split.Interest,
			Principal:       split.Principal,
		})
	}
	return rows
}

// Portion is the interest/principal breakdown of one installment.
type Portion struct {
	Interest  decimal.Decimal
	Principal decimal.Decimal
}

// Split walks count months over base, charging round(rem*r) interest and
// amortizing the rest of inst. The remaining principal never goes negative.
func Split(base, annualPercent, inst decimal.Decimal, count int) []Portion {
	r := MonthlyRate(annualPercent)
	remaining := base
	out := make([]Portion, 0, count)
	for i := 0; i < count; i++ {
		interest := remaining.Mul(r).Round(2)
		amort := inst.Sub(interest).Round(2)
		remaining = remaining.Sub(amort)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		out = append(out, Portion{Interest: interest, Principal: amort})
	}
	return out
}

// TotalInterest sums the interest column of rows.
func TotalInterest(rows []Row) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Interest)
	}
	return sum
}
