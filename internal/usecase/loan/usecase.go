package loan

import (
	"context"
	"fmt"

	"retailbank-backoffice/internal/domain/fault"
	domain "retailbank-backoffice/internal/domain/loan"
	"retailbank-backoffice/internal/domain/uow"
	"retailbank-backoffice/internal/usecase/guard"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoFutureInstallments = fault.New(fault.BusinessRuleViolation, "loan has no future installments to recompute")

	hundred = decimal.NewFromInt(100)
)

type Usecase struct {
	uow    uow.UnitOfWork
	notice *notice.Dispatcher
	clock  clock.Clock
	log    *logrus.Logger
}

func NewUsecase(u uow.UnitOfWork, n *notice.Dispatcher, c clock.Clock, log *logrus.Logger) *Usecase {
	return &Usecase{uow: u, notice: n, clock: c, log: log}
}

// ValidRate reports whether an annual percentage is within [0, 100].
func ValidRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

func (u *Usecase) ChangeRate(ctx context.Context, in ChangeRateInput) (*RateChangeResult, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "change_rate", "loan": in.LoanNumber, "rate": in.NewAnnualRate.String()})
	if !ValidRate(in.NewAnnualRate) {
		guard.Report(entry, "change_rate", domain.ErrInvalidRate)
		return nil, domain.ErrInvalidRate
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var (
		l   *domain.Loan
		res *RateChangeResult
	)
	err = u.uow.WithinLoanTx(ctx, in.LoanNumber, func(r uow.Repos, locked *domain.Loan) error {
		l = locked
		if !l.IsActive {
			return domain.ErrInactive
		}
		previous := l.AnnualRate
		inst, n := RecomputeFuture(l.Installments, in.NewAnnualRate, now)
		if n == 0 {
			return ErrNoFutureInstallments
		}
		l.AnnualRate = in.NewAnnualRate
		l.MonthlyInstallment = inst
		l.OutstandingBalance = l.UnpaidRemaining()
		l.Refresh(now)

		if err := r.Installments.SaveAll(ctx, l.Installments); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		res = &RateChangeResult{
			Loan: ToDTO(l), PreviousRate: previous, NewInstallment: inst,
			RecomputedCount: n, OutstandingBalance: l.OutstandingBalance,
		}
		return nil
	})
	err = guard.Found(err, domain.ErrNotFound, "loan")
	if err != nil {
		guard.Report(entry, "change_rate", err)
		return nil, err
	}
	entry.WithField("installment", res.NewInstallment.String()).Info("rate changed")

	u.notice.Send(ctx, l.OwnerID, "Loan rate updated", fmt.Sprintf(
		"The annual rate of loan %s is now %s%%. Your next %d installments are %s each.",
		l.LoanNumber, l.AnnualRate.StringFixed(2), res.RecomputedCount, notice.Money(res.NewInstallment)))
	return res, nil
}

// Schedule returns the loan with its installments in order and overdue flags
// evaluated against the clock.
func (u *Usecase) Schedule(ctx context.Context, loanNumber string) (*ScheduleDTO, error) {
	var out *ScheduleDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByNumber(ctx, loanNumber)
		if err := guard.Found(err, domain.ErrNotFound, "loan"); err != nil {
			return err
		}
		out = toSchedule(l, u.clock.Now())
		return nil
	})
	return out, err
}

func (u *Usecase) ListByOwner(ctx context.Context, ownerID string) ([]LoanDTO, error) {
	var out []LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		list, err := r.Loans.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		for i := range list {
			out = append(out, ToDTO(&list[i]))
		}
		return nil
	})
	return out, err
}

// RefreshArrears re-derives the payment status of every active loan and
// returns how many changed.
func (u *Usecase) RefreshArrears(ctx context.Context) (int, error) {
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return 0, err
	}
	now := u.clock.Now()
	changed := 0
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		active, err := r.Loans.ListActive(ctx)
		if err != nil {
			return err
		}
		for i := range active {
			l := &active[i]
			before := l.PaymentStatus
			l.Refresh(now)
			if l.PaymentStatus == before {
				continue
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		u.log.WithError(err).Error("arrears refresh failed")
		return 0, err
	}
	u.log.WithField("changed", changed).Info("arrears refreshed")
	return changed, nil
}
