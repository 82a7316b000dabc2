package mysql

import (
	"context"
	"errors"
	"testing"

	accountDomain "retailbank-backoffice/internal/domain/account"
	loanDomain "retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/internal/domain/uow"
	"retailbank-backoffice/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		a := makeAccount("100000001", id.NewID32(), 0, true)
		if err := r.Accounts.Create(ctx, a); err != nil {
			return err
		}
		return r.Transactions.Append(ctx, &accountDomain.Transaction{AccountID: a.ID, Amount: decimal.NewFromInt(1), Direction: accountDomain.DirectionCredit})
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	a, err := NewAccountRepository(db).GetByNumber(ctx, "100000001")
	if err != nil {
		t.Fatalf("account not visible after commit: %v", err)
	}
	if rows, _ := NewTransactionRepository(db).ListByAccount(ctx, a.ID, 0); len(rows) != 1 {
		t.Fatalf("transaction rows = %d", len(rows))
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)
	sentinel := errors.New("boom")

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Accounts.Create(ctx, makeAccount("100000001", id.NewID32(), 0, true)); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, makeLoan("100000002", id.NewID32(), 3000, true)); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	if _, err := NewAccountRepository(db).GetByNumber(ctx, "100000001"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected account absent after rollback, got %v", err)
	}
	if _, err := NewLoanRepository(db).GetByNumber(ctx, "100000002"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected loan absent after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_LoadsInstallments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	if err := NewLoanRepository(db).Create(ctx, makeLoan("123456789", id.NewID32(), 3000, true)); err != nil {
		t.Fatal(err)
	}

	err := guow.WithinLoanTx(ctx, "123456789", func(r uow.Repos, l *loanDomain.Loan) error {
		if len(l.Installments) != 3 || l.Installments[0].Number != 1 {
			t.Fatalf("installments not loaded in order: %+v", l.Installments)
		}
		l.Installments[0].Paid = true
		l.Installments[0].RemainingAmount = decimal.Zero
		l.OutstandingBalance = decimal.NewFromInt(2000)
		if err := r.Installments.SaveAll(ctx, l.Installments); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	got, _ := NewLoanRepository(db).GetByNumber(ctx, "123456789")
	if !got.Installments[0].Paid || !got.OutstandingBalance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("changes not committed: %+v", got)
	}
}

func TestGormUoW_WithinLoanTx_RollbackAndMissing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	if err := NewLoanRepository(db).Create(ctx, makeLoan("123456789", id.NewID32(), 3000, true)); err != nil {
		t.Fatal(err)
	}
	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, "123456789", func(r uow.Repos, l *loanDomain.Loan) error {
		l.IsActive = false
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel
	})
	got, _ := NewLoanRepository(db).GetByNumber(ctx, "123456789")
	if !got.IsActive {
		t.Fatal("rollback did not restore the loan")
	}

	err := guow.WithinLoanTx(ctx, "999999999", func(uow.Repos, *loanDomain.Loan) error {
		t.Fatal("fn must not run for a missing loan")
		return nil
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
