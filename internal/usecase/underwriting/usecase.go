package underwriting

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountDomain "retailbank-backoffice/internal/domain/account"
	domain "retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/internal/domain/uow"
	accountuc "retailbank-backoffice/internal/usecase/account"
	"retailbank-backoffice/internal/usecase/guard"
	loanuc "retailbank-backoffice/internal/usecase/loan"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/internal/usecase/numbering"
	"retailbank-backoffice/pkg/amortization"
	"retailbank-backoffice/pkg/clock"
	"retailbank-backoffice/pkg/mask"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type EvaluateInput struct {
	OwnerID    string          `json:"owner_id"`
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months"`
	Override   bool            `json:"override"`
}

func (in EvaluateInput) request() Request {
	return Request{Principal: in.Principal, AnnualRate: in.AnnualRate, TermMonths: in.TermMonths, Override: in.Override}
}

type AssignLoanInput struct {
	EvaluateInput
	OperatedBy string `json:"operated_by"`
}

type AssignResult struct {
	Loan          loanuc.LoanDTO `json:"loan"`
	Decision      Decision       `json:"decision"`
	AccountNumber string         `json:"credited_account_number"`
	Reference     string         `json:"reference"`
}

type Usecase struct {
	uow     uow.UnitOfWork
	numbers *numbering.Generator
	notice  *notice.Dispatcher
	clock   clock.Clock
	log     *logrus.Logger
}

func NewUsecase(u uow.UnitOfWork, numbers *numbering.Generator, n *notice.Dispatcher, c clock.Clock, log *logrus.Logger) *Usecase {
	return &Usecase{uow: u, numbers: numbers, notice: n, clock: c, log: log}
}

func snapshot(ctx context.Context, r uow.Repos, ownerID string) (Snapshot, error) {
	var s Snapshot
	_, err := r.Loans.GetActiveByOwner(ctx, ownerID)
	switch {
	case err == nil:
		s.HasActiveLoan = true
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return s, fmt.Errorf("load active loan: %w", err)
	}

	loanDebt, err := r.Loans.OutstandingByOwner(ctx, ownerID)
	if err != nil {
		return s, fmt.Errorf("sum loan debt: %w", err)
	}
	cardDebt, err := r.Cards.ActiveDebtByOwner(ctx, ownerID)
	if err != nil {
		return s, fmt.Errorf("sum card debt: %w", err)
	}
	sys, err := r.Loans.SystemDebt(ctx)
	if err != nil {
		return s, fmt.Errorf("system debt: %w", err)
	}
	s.ExistingDebt = loanDebt.Add(cardDebt)
	s.SystemAverageDebt = sys.Average()
	return s, nil
}

// Evaluate returns the decision without side effects. A rejection is a
// decision, not an error.
func (u *Usecase) Evaluate(ctx context.Context, in EvaluateInput) (*Decision, error) {
	var d Decision
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := snapshot(ctx, r, in.OwnerID)
		if err != nil {
			return err
		}
		d = Evaluate(s, in.request())
		return nil
	})
	if err != nil {
		u.log.WithError(err).WithField("owner_id", in.OwnerID).Error("loan evaluation failed")
		return nil, err
	}
	return &d, nil
}

// AssignLoan evaluates and, when approved, creates the loan with its schedule
// and disburses the principal into the owner's principal account.
func (u *Usecase) AssignLoan(ctx context.Context, in AssignLoanInput) (*AssignResult, error) {
	entry := u.log.WithFields(logrus.Fields{
		"op": "assign_loan", "owner_id": in.OwnerID, "principal": in.Principal.String(),
		"rate": in.AnnualRate.String(), "term": in.TermMonths, "override": in.Override,
	})
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var res *AssignResult
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// the principal row lock serializes concurrent assignments for one owner
		acc, err := accountuc.LockPrincipal(ctx, r.Accounts, in.OwnerID)
		if err != nil {
			return err
		}
		s, err := snapshot(ctx, r, in.OwnerID)
		if err != nil {
			return err
		}
		d := Evaluate(s, in.request())
		if !d.Approved() {
			return d.Err()
		}

		number, err := u.numbers.ShortNumber(ctx, r)
		if err != nil {
			return err
		}
		l := newLoan(number, in, d, now)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		acc.Credit(in.Principal)
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		row := &accountDomain.Transaction{
			Reference:         guard.Reference(),
			AccountID:         acc.ID,
			Amount:            in.Principal,
			Direction:         accountDomain.DirectionCredit,
			CounterpartyLabel: "loan " + number,
			Status:            accountDomain.StatusCompleted,
			OperationType:     accountDomain.OpLoanDisbursement,
			OperatedByUserID:  in.OperatedBy,
			Timestamp:         now,
		}
		if err := r.Transactions.Append(ctx, row); err != nil {
			return err
		}
		res = &AssignResult{Loan: loanuc.ToDTO(l), Decision: d, AccountNumber: acc.AccountNumber, Reference: row.Reference}
		return nil
	})
	if err != nil {
		guard.Report(entry, "assign_loan", err)
		return nil, err
	}
	entry.WithField("loan", res.Loan.LoanNumber).Info("loan assigned")

	u.notice.Send(ctx, in.OwnerID, "Loan approved", fmt.Sprintf(
		"Loan %s for %s was approved: %d installments of %s at %s%% per year. The funds are in account %s.",
		res.Loan.LoanNumber, notice.Money(in.Principal), in.TermMonths, notice.Money(res.Loan.MonthlyInstallment),
		in.AnnualRate.StringFixed(2), mask.Last4(res.AccountNumber)))
	return res, nil
}

func newLoan(number string, in AssignLoanInput, d Decision, now time.Time) *domain.Loan {
	rows := amortization.GenerateSchedule(in.Principal, in.AnnualRate, in.TermMonths, now)
	l := &domain.Loan{
		LoanNumber:         number,
		OwnerID:            in.OwnerID,
		PrincipalAmount:    in.Principal,
		TermMonths:         in.TermMonths,
		AnnualRate:         in.AnnualRate,
		MonthlyInstallment: d.MonthlyInstallment,
		InstallmentsTotal:  len(rows),
		PaymentStatus:      domain.StatusCurrent,
		IsActive:           true,
		StartDate:          now,
		Installments:       make([]domain.Installment, 0, len(rows)),
	}
	for _, row := range rows {
		l.Installments = append(l.Installments, domain.Installment{
			Number:          row.Number,
			DueDate:         row.DueDate,
			Amount:          row.Amount,
			RemainingAmount: row.RemainingAmount,
			Interest:        row.Interest,
			Principal:       row.Principal,
		})
	}
	l.OutstandingBalance = l.UnpaidRemaining()
	return l
}
