package uow

import (
	"context"

	"retailbank-backoffice/internal/domain/account"
	"retailbank-backoffice/internal/domain/card"
	"retailbank-backoffice/internal/domain/loan"
)

// Repos are bound to one transaction.
type Repos struct {
	Accounts     account.Repository
	Transactions account.TransactionRepository
	Loans        loan.Repository
	Installments loan.InstallmentRepository
	Cards        card.Repository
	Consumptions card.ConsumptionRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// locks the loan row and loads its installments before calling fn
	WithinLoanTx(ctx context.Context, loanNumber string, fn func(r Repos, l *loan.Loan) error) error
}
