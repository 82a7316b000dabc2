package loanmock

import (
	"context"
	"errors"

	domain "retailbank-backoffice/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

var ErrUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads return ErrUnimplemented; unset writes succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByNumberFn          func(ctx context.Context, number string) (*domain.Loan, error)
	GetByNumberForUpdateFn func(ctx context.Context, number string) (*domain.Loan, error)
	GetActiveByOwnerFn     func(ctx context.Context, ownerID string) (*domain.Loan, error)
	ListByOwnerFn          func(ctx context.Context, ownerID string) ([]domain.Loan, error)
	ListActiveFn           func(ctx context.Context) ([]domain.Loan, error)
	NumberExistsFn         func(ctx context.Context, number string) (bool, error)
	OutstandingByOwnerFn   func(ctx context.Context, ownerID string) (decimal.Decimal, error)
	SystemDebtFn           func(ctx context.Context) (domain.SystemDebt, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByNumber(ctx context.Context, number string) (*domain.Loan, error) {
	if m.GetByNumberFn != nil {
		return m.GetByNumberFn(ctx, number)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) GetByNumberForUpdate(ctx context.Context, number string) (*domain.Loan, error) {
	if m.GetByNumberForUpdateFn != nil {
		return m.GetByNumberForUpdateFn(ctx, number)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) GetActiveByOwner(ctx context.Context, ownerID string) (*domain.Loan, error) {
	if m.GetActiveByOwnerFn != nil {
		return m.GetActiveByOwnerFn(ctx, ownerID)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Loan, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.Loan, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) NumberExists(ctx context.Context, number string) (bool, error) {
	if m.NumberExistsFn != nil {
		return m.NumberExistsFn(ctx, number)
	}
	return false, nil
}

func (m *Repo) OutstandingByOwner(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	if m.OutstandingByOwnerFn != nil {
		return m.OutstandingByOwnerFn(ctx, ownerID)
	}
	return decimal.Zero, ErrUnimplemented
}

func (m *Repo) SystemDebt(ctx context.Context) (domain.SystemDebt, error) {
	if m.SystemDebtFn != nil {
		return m.SystemDebtFn(ctx)
	}
	return domain.SystemDebt{}, ErrUnimplemented
}
