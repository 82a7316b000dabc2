package loanpayment

import (
	"context"
	"fmt"
	"time"

	accountDomain "retailbank-backoffice/internal/domain/account"
	domain "retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/internal/domain/uow"
	accountuc "retailbank-backoffice/internal/usecase/account"
	"retailbank-backoffice/internal/usecase/guard"
	loanuc "retailbank-backoffice/internal/usecase/loan"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/pkg/clock"
	"retailbank-backoffice/pkg/mask"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PaymentInput struct {
	AccountNumber string          `json:"account_number"`
	LoanNumber    string          `json:"loan_number"`
	Amount        decimal.Decimal `json:"amount"`
	OperatedBy    string          `json:"operated_by"`
}

type Preview struct {
	Waterfall
	LoanNumber        string          `json:"loan_number"`
	OutstandingBefore decimal.Decimal `json:"outstanding_before"`
	OutstandingAfter  decimal.Decimal `json:"outstanding_after"`
}

type Receipt struct {
	Preview
	Reference     string          `json:"reference"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Loan          loanuc.LoanDTO  `json:"loan"`
	Timestamp     time.Time       `json:"timestamp"`
}

type Usecase struct {
	uow    uow.UnitOfWork
	notice *notice.Dispatcher
	clock  clock.Clock
	log    *logrus.Logger
}

func NewUsecase(u uow.UnitOfWork, n *notice.Dispatcher, c clock.Clock, log *logrus.Logger) *Usecase {
	return &Usecase{uow: u, notice: n, clock: c, log: log}
}

// plan checks the preconditions shared by Preview and Apply.
func plan(acc *accountDomain.Account, l *domain.Loan, amount decimal.Decimal) (Preview, error) {
	if !acc.Covers(amount) {
		return Preview{}, accountDomain.ErrInsufficientFunds
	}
	if err := l.Usable(); err != nil {
		return Preview{}, err
	}
	w := Plan(l.Installments, amount)
	if !w.Applied.IsPositive() {
		return Preview{}, domain.ErrNothingCovered
	}
	after := l.OutstandingBalance.Sub(w.Applied)
	if after.IsNegative() {
		after = decimal.Zero
	}
	return Preview{Waterfall: w, LoanNumber: l.LoanNumber, OutstandingBefore: l.OutstandingBalance, OutstandingAfter: after}, nil
}

// Preview runs the same waterfall as Apply without persisting anything.
func (u *Usecase) Preview(ctx context.Context, in PaymentInput) (*Preview, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "preview_loan_payment", "loan": in.LoanNumber, "amount": in.Amount.String()})
	if err := guard.Positive(in.Amount); err != nil {
		guard.Report(entry, "preview_loan_payment", err)
		return nil, err
	}

	var p Preview
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		acc, err := r.Accounts.GetByNumber(ctx, in.AccountNumber)
		if err := guard.Found(err, accountDomain.ErrNotFound, "account"); err != nil {
			return err
		}
		if err := acc.Usable(); err != nil {
			return err
		}
		l, err := r.Loans.GetByNumber(ctx, in.LoanNumber)
		if err := guard.Found(err, domain.ErrNotFound, "loan"); err != nil {
			return err
		}
		p, err = plan(acc, l, in.Amount)
		return err
	})
	if err != nil {
		guard.Report(entry, "preview_loan_payment", err)
		return nil, err
	}
	return &p, nil
}

// Apply debits only the applied part of the amount; the change never leaves
// the account. The loan closes once every installment is paid.
func (u *Usecase) Apply(ctx context.Context, in PaymentInput) (*Receipt, error) {
	entry := u.log.WithFields(logrus.Fields{
		"op": "apply_loan_payment", "loan": in.LoanNumber, "account": mask.Last4(in.AccountNumber), "amount": in.Amount.String(),
	})
	if err := guard.Positive(in.Amount); err != nil {
		guard.Report(entry, "apply_loan_payment", err)
		return nil, err
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var (
		owner string
		res   *Receipt
	)
	// loan first, then account: the same order every loan-and-account operation uses
	err = u.uow.WithinLoanTx(ctx, in.LoanNumber, func(r uow.Repos, l *domain.Loan) error {
		acc, err := accountuc.Lock(ctx, r.Accounts, in.AccountNumber)
		if err != nil {
			return err
		}
		p, err := plan(acc, l, in.Amount)
		if err != nil {
			return err
		}

		p.Settle(l.Installments, now)
		l.OutstandingBalance = p.OutstandingAfter
		l.Refresh(now)
		if l.FullyPaid() {
			l.IsActive = false
		}
		if err := r.Installments.SaveAll(ctx, l.Installments); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		if err := acc.Debit(p.Applied); err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		row := &accountDomain.Transaction{
			Reference:         guard.Reference(),
			AccountID:         acc.ID,
			Amount:            p.Applied,
			Direction:         accountDomain.DirectionDebit,
			CounterpartyLabel: "loan " + l.LoanNumber,
			Status:            accountDomain.StatusCompleted,
			OperationType:     accountDomain.OpLoanPayment,
			OperatedByUserID:  in.OperatedBy,
			Timestamp:         now,
		}
		if err := r.Transactions.Append(ctx, row); err != nil {
			return err
		}
		owner = l.OwnerID
		res = &Receipt{
			Preview: p, Reference: row.Reference, AccountNumber: acc.AccountNumber,
			Balance: acc.Balance, Loan: loanuc.ToDTO(l), Timestamp: now,
		}
		return nil
	})
	if err := guard.Found(err, domain.ErrNotFound, "loan"); err != nil {
		guard.Report(entry, "apply_loan_payment", err)
		return nil, err
	}
	entry.WithFields(logrus.Fields{"applied": res.Applied.String(), "covered": res.Covered}).Info("loan payment applied")

	body := fmt.Sprintf("A payment of %s was applied to loan %s from account %s. Installments covered: %d. Outstanding balance: %s.",
		notice.Money(res.Applied), res.LoanNumber, mask.Last4(res.AccountNumber), res.Covered, notice.Money(res.OutstandingAfter))
	if res.Change.IsPositive() {
		body += fmt.Sprintf(" %s exceeded what was owed and stayed in your account.", notice.Money(res.Change))
	}
	if !res.Loan.IsActive {
		body += " The loan is now fully paid."
	}
	u.notice.Send(ctx, owner, "Loan payment received", body)
	return res, nil
}
