package mysql

import (
	"context"

	"retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Accounts:     &AccountRepository{db: tx},
		Transactions: &TransactionRepository{db: tx},
		Loans:        &LoanRepository{db: tx},
		Installments: &InstallmentRepository{db: tx},
		Cards:        &CardRepository{db: tx},
		Consumptions: &ConsumptionRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanNumber string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front; installments only change under this lock
		l, err := r.Loans.GetByNumberForUpdate(ctx, loanNumber)
		if err != nil {
			return err
		}
		if l.Installments, err = r.Installments.ListByLoan(ctx, l.ID); err != nil {
			return err
		}
		return fn(r, l)
	})
}
