package loan

import (
	"time"

	domain "retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/pkg/amortization"

	"github.com/shopspring/decimal"
)

// RecomputeFuture re-amortizes the unpaid installments due strictly after now
// at newRate. Paid and already-due installments are left alone. It returns
// the new constant installment and how many rows it rewrote.
func RecomputeFuture(items []domain.Installment, newRate decimal.Decimal, now time.Time) (decimal.Decimal, int) {
	var idx []int
	base := decimal.Zero
	for i, in := range items {
		if !in.Paid && in.DueDate.After(now) {
			idx = append(idx, i)
			base = base.Add(in.Due())
		}
	}
	if len(idx) == 0 {
		return decimal.Zero, 0
	}

	inst := amortization.Installment(base, newRate, len(idx))
	split := amortization.Split(base, newRate, inst, len(idx))
	// each rewritten row owes the full new installment; the re-amortized
	// balance is inst*len(idx)
	for k, i := range idx {
		items[i].Amount = inst
		items[i].RemainingAmount = inst
		items[i].Interest = split[k].Interest
		items[i].Principal = split[k].Principal
	}
	return inst, len(idx)
}
