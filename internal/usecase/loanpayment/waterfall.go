// Package loanpayment applies savings-account funds to a loan's installments,
// oldest first.
package loanpayment

import (
	"sort"
	"time"

	domain "retailbank-backoffice/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// Allocation is what one installment receives from a payment.
type Allocation struct {
	Number    int             `json:"number"`
	Due       decimal.Decimal `json:"due"`
	Applied   decimal.Decimal `json:"applied"`
	Remaining decimal.Decimal `json:"remaining"`
	Paid      bool            `json:"paid"`
}

// Waterfall is the outcome of spreading an amount over unpaid installments.
// It is computed once and never mutated.
type Waterfall struct {
	Allocations []Allocation    `json:"allocations"`
	Requested   decimal.Decimal `json:"requested"`
	Applied     decimal.Decimal `json:"applied"`
	Change      decimal.Decimal `json:"change"`
	Covered     int             `json:"installments_covered"`
	Touched     int             `json:"installments_touched"`
}

// Plan walks unpaid installments by ascending number. Each one is paid in
// full while funds last; the first it cannot cover is reduced by what is left
// and the walk stops. Funds left after every installment is paid are change.
func Plan(items []domain.Installment, amount decimal.Decimal) Waterfall {
	unpaid := make([]domain.Installment, 0, len(items))
	for _, in := range items {
		if !in.Paid {
			unpaid = append(unpaid, in)
		}
	}
	sort.Slice(unpaid, func(i, j int) bool { return unpaid[i].Number < unpaid[j].Number })

	w := Waterfall{Requested: amount, Applied: decimal.Zero, Change: decimal.Zero}
	left := amount
	for _, in := range unpaid {
		if !left.IsPositive() {
			break
		}
		due := in.Due()
		a := Allocation{Number: in.Number, Due: due}
		if left.GreaterThanOrEqual(due) {
			a.Applied, a.Remaining, a.Paid = due, decimal.Zero, true
			w.Covered++
		} else {
			a.Applied, a.Remaining = left, due.Sub(left)
		}
		left = left.Sub(a.Applied)
		w.Applied = w.Applied.Add(a.Applied)
		w.Allocations = append(w.Allocations, a)
		w.Touched++
	}
	if left.IsPositive() {
		w.Change = left
	}
	return w
}

// Settle writes the allocations onto items, matching by installment number,
// and returns how many were changed.
func (w Waterfall) Settle(items []domain.Installment, paidAt time.Time) int {
	byNumber := make(map[int]Allocation, len(w.Allocations))
	for _, a := range w.Allocations {
		byNumber[a.Number] = a
	}
	n := 0
	for i := range items {
		a, ok := byNumber[items[i].Number]
		if !ok || items[i].Paid {
			continue
		}
		items[i].RemainingAmount = a.Remaining
		if a.Paid {
			items[i].Paid = true
			t := paidAt
			items[i].PaidAt = &t
		}
		n++
	}
	return n
}
