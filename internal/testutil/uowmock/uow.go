package uowmock

import (
	"context"
	"errors"

	"retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Unset fields return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanNumber string, fn func(r uow.Repos, l *loan.Loan) error) error

	Calls int
}

// Failing returns a UoW whose every transaction fails with err before fn runs.
func Failing(err error) *UoW {
	return &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error { return err },
		WithinLoanTxFn: func(context.Context, string, func(uow.Repos, *loan.Loan) error) error {
			return err
		},
	}
}

// Passthrough runs fn directly against repos, with no transaction.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	m.Calls++
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanNumber string, fn func(r uow.Repos, l *loan.Loan) error) error {
	m.Calls++
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanNumber, fn)
	}
	return errUnimplemented
}
