package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "retailbank-backoffice/internal/domain/account"
	"retailbank-backoffice/internal/domain/fault"
	"retailbank-backoffice/internal/domain/uow"
	"retailbank-backoffice/internal/usecase/guard"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/internal/usecase/numbering"
	"retailbank-backoffice/pkg/clock"
	"retailbank-backoffice/pkg/mask"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrUnknownKind = fault.New(fault.BusinessRuleViolation, "unknown transfer kind")

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

// Lock loads an account row for update and rejects inactive ones.
func Lock(ctx context.Context, r domain.Repository, number string) (*domain.Account, error) {
	a, err := r.GetByNumberForUpdate(ctx, number)
	if err := guard.Found(err, domain.ErrNotFound, "account"); err != nil {
		return nil, err
	}
	if err := a.Usable(); err != nil {
		return nil, err
	}
	return a, nil
}

// LockPrincipal loads the owner's principal account for update.
func LockPrincipal(ctx context.Context, r domain.Repository, ownerID string) (*domain.Account, error) {
	a, err := r.GetPrincipalByOwnerForUpdate(ctx, ownerID)
	if err := guard.Found(err, domain.ErrNoPrincipal, "principal account"); err != nil {
		return nil, err
	}
	if err := a.Usable(); err != nil {
		return nil, err
	}
	return a, nil
}

// lockPair locks two accounts in ascending number order so concurrent
// transfers in opposite directions cannot deadlock.
func lockPair(ctx context.Context, r domain.Repository, first, second string) (*domain.Account, *domain.Account, error) {
	lo, hi := first, second
	if hi < lo {
		lo, hi = hi, lo
	}
	a, err := Lock(ctx, r, lo)
	if err != nil {
		return nil, nil, err
	}
	b, err := Lock(ctx, r, hi)
	if err != nil {
		return nil, nil, err
	}
	if lo == first {
		return a, b, nil
	}
	return b, a, nil
}

func (u *Usecase) Deposit(ctx context.Context, in MovementInput) (*MovementResult, error) {
	return u.move(ctx, in, domain.DirectionCredit)
}

func (u *Usecase) Withdraw(ctx context.Context, in MovementInput) (*MovementResult, error) {
	return u.move(ctx, in, domain.DirectionDebit)
}

func (u *Usecase) move(ctx context.Context, in MovementInput, dir domain.Direction) (*MovementResult, error) {
	op, label, subject := domain.OpDeposit, "cash deposit", "Deposit received"
	if dir == domain.DirectionDebit {
		op, label, subject = domain.OpWithdrawal, "cash withdrawal", "Withdrawal made"
	}
	if in.Label != "" {
		label = in.Label
	}
	entry := u.log.WithFields(logrus.Fields{"op": op, "account": mask.Last4(in.AccountNumber), "amount": in.Amount.String()})

	if err := guard.Positive(in.Amount); err != nil {
		guard.Report(entry, string(op), err)
		return nil, err
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var (
		acc *domain.Account
		res *MovementResult
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if acc, err = Lock(ctx, r.Accounts, in.AccountNumber); err != nil {
			return err
		}
		if dir == domain.DirectionDebit {
			if err := acc.Debit(in.Amount); err != nil {
				return err
			}
		} else {
			acc.Credit(in.Amount)
		}
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		row := &domain.Transaction{
			Reference:         guard.Reference(),
			AccountID:         acc.ID,
			Amount:            in.Amount,
			Direction:         dir,
			CounterpartyLabel: label,
			Status:            domain.StatusCompleted,
			OperationType:     op,
			OperatedByUserID:  in.OperatedBy,
			Timestamp:         u.clock.Now(),
		}
		if err := r.Transactions.Append(ctx, row); err != nil {
			return err
		}
		res = &MovementResult{Reference: row.Reference, AccountNumber: acc.AccountNumber, Amount: in.Amount, Balance: acc.Balance, Timestamp: row.Timestamp}
		return nil
	})
	if err != nil {
		guard.Report(entry, string(op), err)
		return nil, err
	}
	entry.Info(string(op) + " completed")

	u.notice.Send(ctx, acc.OwnerID, subject, fmt.Sprintf(
		"An amount of %s was %sed on account %s. Balance: %s.",
		notice.Money(in.Amount), dir, mask.Last4(acc.AccountNumber), notice.Money(acc.Balance)))
	return res, nil
}

func (u *Usecase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	entry := u.log.WithFields(logrus.Fields{
		"op": "transfer", "kind": in.Kind, "amount": in.Amount.String(),
		"source": mask.Last4(in.SourceNumber), "destination": mask.Last4(in.DestinationNumber),
	})
	op, ok := in.Kind.operation()
	if !ok {
		guard.Report(entry, "transfer", ErrUnknownKind)
		return nil, ErrUnknownKind
	}
	if err := guard.Positive(in.Amount); err != nil {
		guard.Report(entry, "transfer", err)
		return nil, err
	}
	if in.SourceNumber == in.DestinationNumber {
		guard.Report(entry, "transfer", domain.ErrSameAccount)
		return nil, domain.ErrSameAccount
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var (
		src, dst *domain.Account
		res      *TransferResult
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if src, dst, err = lockPair(ctx, r.Accounts, in.SourceNumber, in.DestinationNumber); err != nil {
			return err
		}
		if in.Kind == KindExpress && src.OwnerID != dst.OwnerID {
			return domain.ErrOwnerMismatch
		}
		ref, at, err := u.post(ctx, r, src, dst, in.Amount, op, in.Label, in.OperatedBy)
		if err != nil {
			return err
		}
		res = &TransferResult{
			Reference: ref, SourceNumber: src.AccountNumber, DestinationNumber: dst.AccountNumber,
			Amount: in.Amount, SourceBalance: src.Balance, Timestamp: at,
		}
		return nil
	})
	if err != nil {
		guard.Report(entry, "transfer", err)
		return nil, err
	}
	entry.WithField("reference", res.Reference).Info("transfer completed")

	u.notice.Send(ctx, src.OwnerID, "Transfer sent", fmt.Sprintf(
		"You sent %s from account %s to account %s.",
		notice.Money(in.Amount), mask.Last4(src.AccountNumber), mask.Last4(dst.AccountNumber)))
	u.notice.Send(ctx, dst.OwnerID, "Transfer received", fmt.Sprintf(
		"You received %s on account %s from account %s.",
		notice.Money(in.Amount), mask.Last4(dst.AccountNumber), mask.Last4(src.AccountNumber)))
	return res, nil
}

// post moves amount from src to dst and appends the debit/credit pair. Both
// rows share one reference and one timestamp.
func (u *Usecase) post(ctx context.Context, r uow.Repos, src, dst *domain.Account, amount decimal.Decimal, op domain.OperationType, label, operatedBy string) (string, time.Time, error) {
	if err := src.Debit(amount); err != nil {
		return "", time.Time{}, err
	}
	dst.Credit(amount)
	if err := r.Accounts.Save(ctx, src); err != nil {
		return "", time.Time{}, err
	}
	if err := r.Accounts.Save(ctx, dst); err != nil {
		return "", time.Time{}, err
	}

	ref, now := guard.Reference(), u.clock.Now()
	toLabel, fromLabel := mask.Last4(dst.AccountNumber), mask.Last4(src.AccountNumber)
	if label != "" {
		toLabel = label
	}
	rows := []*domain.Transaction{
		{Reference: ref, AccountID: src.ID, Amount: amount, Direction: domain.DirectionDebit, CounterpartyLabel: toLabel,
			Status: domain.StatusCompleted, OperationType: op, OperatedByUserID: operatedBy, Timestamp: now},
		{Reference: ref, AccountID: dst.ID, Amount: amount, Direction: domain.DirectionCredit, CounterpartyLabel: fromLabel,
			Status: domain.StatusCompleted, OperationType: op, OperatedByUserID: operatedBy, Timestamp: now},
	}
	if err := r.Transactions.Append(ctx, rows...); err != nil {
		return "", time.Time{}, err
	}
	return ref, now, nil
}

func (u *Usecase) OpenPrincipal(ctx context.Context, in OpenInput) (*AccountDTO, error) {
	return u.open(ctx, in, true)
}

func (u *Usecase) OpenSecondary(ctx context.Context, in OpenInput) (*AccountDTO, error) {
	return u.open(ctx, in, false)
}

func (u *Usecase) open(ctx context.Context, in OpenInput, principal bool) (*AccountDTO, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "open_account", "owner_id": in.OwnerID, "principal": principal})
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var acc *domain.Account
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// locking the principal row serializes concurrent opens for one owner
		_, err := r.Accounts.GetPrincipalByOwnerForUpdate(ctx, in.OwnerID)
		err = guard.Found(err, domain.ErrNoPrincipal, "principal account")
		switch {
		case principal && err == nil:
			return domain.ErrPrincipalExists
		case principal && errors.Is(err, domain.ErrNoPrincipal):
		case err != nil:
			return err
		}

		number, err := u.numbers.ShortNumber(ctx, r)
		if err != nil {
			return err
		}
		acc = &domain.Account{AccountNumber: number, OwnerID: in.OwnerID, Balance: decimal.Zero, IsPrincipal: principal, IsActive: true}
		return r.Accounts.Create(ctx, acc)
	})
	if err != nil {
		guard.Report(entry, "open_account", err)
		return nil, err
	}
	entry.WithField("account", mask.Last4(acc.AccountNumber)).Info("account opened")

	u.notice.Send(ctx, in.OwnerID, "Account opened", fmt.Sprintf("Your savings account %s is ready.", mask.Last4(acc.AccountNumber)))
	return toDTO(acc), nil
}

// Cancel sweeps the balance to the owner's principal account, then deactivates.
func (u *Usecase) Cancel(ctx context.Context, in CancelInput) (*CancelResult, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "cancel_account", "account": mask.Last4(in.AccountNumber)})
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var (
		acc *domain.Account
		res *CancelResult
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		target, err := r.Accounts.GetByNumber(ctx, in.AccountNumber)
		if err := guard.Found(err, domain.ErrNotFound, "account"); err != nil {
			return err
		}
		if target.IsPrincipal {
			return domain.ErrCancelPrincipal
		}
		owned, err := r.Accounts.ListByOwner(ctx, target.OwnerID)
		if err != nil {
			return err
		}
		principalNumber := ""
		for _, a := range owned {
			if a.IsPrincipal {
				principalNumber = a.AccountNumber
				break
			}
		}
		if principalNumber == "" {
			return domain.ErrNoPrincipal
		}

		var principal *domain.Account
		if acc, principal, err = lockPair(ctx, r.Accounts, in.AccountNumber, principalNumber); err != nil {
			return err
		}
		swept := acc.Balance
		if swept.IsPositive() {
			if _, _, err := u.post(ctx, r, acc, principal, swept, domain.OpAccountSweep, "", in.OperatedBy); err != nil {
				return err
			}
		}
		acc.IsActive = false
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		res = &CancelResult{AccountNumber: acc.AccountNumber, SweptAmount: swept, PrincipalNumber: principal.AccountNumber}
		return nil
	})
	if err != nil {
		guard.Report(entry, "cancel_account", err)
		return nil, err
	}
	entry.WithField("swept", res.SweptAmount.String()).Info("account cancelled")

	u.notice.Send(ctx, acc.OwnerID, "Account cancelled", fmt.Sprintf(
		"Account %s was closed. %s was moved to account %s.",
		mask.Last4(res.AccountNumber), notice.Money(res.SweptAmount), mask.Last4(res.PrincipalNumber)))
	return res, nil
}

// Statement returns the account with its latest ledger rows, newest first.
func (u *Usecase) Statement(ctx context.Context, accountNumber string, limit int) (*StatementDTO, error) {
	var out *StatementDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetByNumber(ctx, accountNumber)
		if err := guard.Found(err, domain.ErrNotFound, "account"); err != nil {
			return err
		}
		rows, err := r.Transactions.ListByAccount(ctx, a.ID, limit)
		if err != nil {
			return err
		}
		out = &StatementDTO{Account: toDTO(a), Transactions: rows}
		return nil
	})
	return out, err
}

func (u *Usecase) ListByOwner(ctx context.Context, ownerID string) ([]AccountDTO, error) {
	var out []AccountDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		list, err := r.Accounts.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		for i := range list {
			out = append(out, *toDTO(&list[i]))
		}
		return nil
	})
	return out, err
}
