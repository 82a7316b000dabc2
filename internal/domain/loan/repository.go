package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

// SystemDebt aggregates active loans system-wide.
type SystemDebt struct {
	Outstanding decimal.Decimal
	Borrowers   int64
}

// Average is outstanding per distinct borrower, 0 when nobody borrows.
func (s SystemDebt) Average() decimal.Decimal {
	if s.Borrowers == 0 {
		return decimal.Zero
	}
	return s.Outstanding.Div(decimal.NewFromInt(s.Borrowers)).Round(2)
}

type Repository interface {
	// Create inserts the loan together with l.Installments.
	Create(ctx context.Context, l *Loan) error
	// Save updates the loan row only.
	Save(ctx context.Context, l *Loan) error
	GetByNumber(ctx context.Context, number string) (*Loan, error)
	GetByNumberForUpdate(ctx context.Context, number string) (*Loan, error)
	GetActiveByOwner(ctx context.Context, ownerID string) (*Loan, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Loan, error)
	ListActive(ctx context.Context) ([]Loan, error)
	NumberExists(ctx context.Context, number string) (bool, error)

	OutstandingByOwner(ctx context.Context, ownerID string) (decimal.Decimal, error)
	SystemDebt(ctx context.Context) (SystemDebt, error)
}

type InstallmentRepository interface {
	// ListByLoan returns installments in ascending number order.
	ListByLoan(ctx context.Context, loanID uint64) ([]Installment, error)
	SaveAll(ctx context.Context, items []Installment) error
}
