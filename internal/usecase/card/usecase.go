// Package card runs the credit-card lifecycle: issuance, limits, merchant
// authorizations and debt paydown from a savings account.
package card

import (
	"context"
	"fmt"

	accountDomain "retailbank-backoffice/internal/domain/account"
	domain "retailbank-backoffice/internal/domain/card"
	"retailbank-backoffice/internal/domain/fault"
	"retailbank-backoffice/internal/domain/uow"
	accountuc "retailbank-backoffice/internal/usecase/account"
	"retailbank-backoffice/internal/usecase/guard"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/internal/usecase/numbering"
	"retailbank-backoffice/pkg/clock"
	"retailbank-backoffice/pkg/id"
	"retailbank-backoffice/pkg/mask"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const cvcDigits = 3

type Usecase struct {
	uow      uow.UnitOfWork
	numbers  *numbering.Generator
	notice   *notice.Dispatcher
	clock    clock.Clock
	log      *logrus.Logger
	hashCost int
}

func NewUsecase(u uow.UnitOfWork, numbers *numbering.Generator, n *notice.Dispatcher, c clock.Clock, log *logrus.Logger) *Usecase {
	return &Usecase{uow: u, numbers: numbers, notice: n, clock: c, log: log, hashCost: bcrypt.DefaultCost}
}

// WithHashCost sets the bcrypt cost used for new CVCs.
func (u *Usecase) WithHashCost(cost int) *Usecase {
	u.hashCost = cost
	return u
}

func lock(ctx context.Context, r domain.Repository, number string) (*domain.Card, error) {
	c, err := r.GetByNumberForUpdate(ctx, number)
	if err := guard.Found(err, domain.ErrNotFound, "card"); err != nil {
		return nil, err
	}
	if err := c.Usable(); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueResult, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "issue_card", "owner_id": in.OwnerID, "limit": in.CreditLimit.String()})
	if err := guard.Positive(in.CreditLimit); err != nil {
		guard.Report(entry, "issue_card", err)
		return nil, err
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	cvc, err := id.NewDigits(cvcDigits)
	if err != nil {
		return nil, fmt.Errorf("draw cvc: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cvc), u.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash cvc: %w", err)
	}

	var c *domain.Card
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		number, err := u.numbers.CardNumber(ctx, r)
		if err != nil {
			return err
		}
		c = &domain.Card{
			CardNumber:  number,
			OwnerID:     in.OwnerID,
			CreditLimit: in.CreditLimit,
			CurrentDebt: decimal.Zero,
			CVCHash:     string(hash),
			IsActive:    true,
		}
		c.SetExpiration(u.clock.Now())
		return r.Cards.Create(ctx, c)
	})
	if err != nil {
		guard.Report(entry, "issue_card", err)
		return nil, err
	}
	entry.WithField("card", mask.Last4(c.CardNumber)).Info("card issued")

	u.notice.Send(ctx, in.OwnerID, "Credit card issued", fmt.Sprintf(
		"Your card %s was issued with a limit of %s. It is valid through %s.",
		mask.Last4(c.CardNumber), notice.Money(c.CreditLimit), c.Expiration()))
	return &IssueResult{Card: toDTO(c), CardNumber: c.CardNumber, CVC: cvc}, nil
}

func (u *Usecase) ChangeLimit(ctx context.Context, in ChangeLimitInput) (*CardDTO, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "change_card_limit", "card": mask.Last4(in.CardNumber), "limit": in.NewLimit.String()})
	if err := guard.Positive(in.NewLimit); err != nil {
		guard.Report(entry, "change_card_limit", err)
		return nil, err
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var c *domain.Card
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if c, err = lock(ctx, r.Cards, in.CardNumber); err != nil {
			return err
		}
		if in.NewLimit.LessThan(c.CurrentDebt) {
			return domain.ErrLimitBelowDebt
		}
		c.CreditLimit = in.NewLimit
		return r.Cards.Save(ctx, c)
	})
	if err != nil {
		guard.Report(entry, "change_card_limit", err)
		return nil, err
	}
	entry.Info("card limit changed")

	u.notice.Send(ctx, c.OwnerID, "Credit limit changed", fmt.Sprintf(
		"The limit of card %s is now %s.", mask.Last4(c.CardNumber), notice.Money(c.CreditLimit)))
	dto := toDTO(c)
	return &dto, nil
}

// Cancel deactivates a card that carries no debt. No funds move.
func (u *Usecase) Cancel(ctx context.Context, cardNumber string) (*CardDTO, error) {
	entry := u.log.WithFields(logrus.Fields{"op": "cancel_card", "card": mask.Last4(cardNumber)})
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var c *domain.Card
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if c, err = lock(ctx, r.Cards, cardNumber); err != nil {
			return err
		}
		if !c.CurrentDebt.IsZero() {
			return domain.ErrOutstandingDebt
		}
		c.IsActive = false
		return r.Cards.Save(ctx, c)
	})
	if err != nil {
		guard.Report(entry, "cancel_card", err)
		return nil, err
	}
	entry.Info("card cancelled")

	u.notice.Send(ctx, c.OwnerID, "Credit card cancelled", fmt.Sprintf("Card %s was cancelled.", mask.Last4(c.CardNumber)))
	dto := toDTO(c)
	return &dto, nil
}

// check validates a merchant charge against the card without touching it.
func (u *Usecase) check(c *domain.Card, in AuthorizeInput) error {
	if c.ExpMonth != in.ExpMonth || c.ExpYear != in.ExpYear {
		return domain.ErrDataMismatch
	}
	if c.Expired(u.clock.Now()) {
		return domain.ErrExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(c.CVCHash), []byte(in.CVC)) != nil {
		return domain.ErrDataMismatch
	}
	if c.CurrentDebt.Add(in.Amount).GreaterThan(c.CreditLimit) {
		return domain.ErrLimitExceeded
	}
	return nil
}

// Authorize charges a merchant consumption to the card and settles it into
// the merchant's principal account.
func (u *Usecase) Authorize(ctx context.Context, in AuthorizeInput) (*AuthorizeResult, error) {
	entry := u.log.WithFields(logrus.Fields{
		"op": "authorize_consumption", "card": mask.Last4(in.CardNumber), "merchant_id": in.MerchantID, "amount": in.Amount.String(),
	})
	if err := guard.Positive(in.Amount); err != nil {
		guard.Report(entry, "authorize_consumption", err)
		return nil, err
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var (
		c        *domain.Card
		merchant *accountDomain.Account
		res      *AuthorizeResult
	)
	// card first, then the merchant account
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if c, err = lock(ctx, r.Cards, in.CardNumber); err != nil {
			return err
		}
		if err := u.check(c, in); err != nil {
			return err
		}
		if merchant, err = accountuc.LockPrincipal(ctx, r.Accounts, in.MerchantID); err != nil {
			return err
		}

		c.CurrentDebt = c.CurrentDebt.Add(in.Amount)
		if err := r.Cards.Save(ctx, c); err != nil {
			return err
		}
		merchant.Credit(in.Amount)
		if err := r.Accounts.Save(ctx, merchant); err != nil {
			return err
		}
		if err := r.Consumptions.Append(ctx, &domain.Consumption{
			CardID: c.ID, Amount: in.Amount, Timestamp: now, MerchantID: in.MerchantID,
			MerchantLabel: in.MerchantLabel, Status: domain.ConsumptionApproved, IsCashAdvance: in.CashAdvance,
		}); err != nil {
			return err
		}
		row := &accountDomain.Transaction{
			Reference:         guard.Reference(),
			AccountID:         merchant.ID,
			Amount:            in.Amount,
			Direction:         accountDomain.DirectionCredit,
			CounterpartyLabel: "card " + mask.Last4(c.CardNumber),
			Status:            accountDomain.StatusCompleted,
			OperationType:     accountDomain.OpMerchantSettlement,
			OperatedByUserID:  in.OperatedBy,
			Timestamp:         now,
		}
		if err := r.Transactions.Append(ctx, row); err != nil {
			return err
		}
		res = &AuthorizeResult{
			CardNumber: mask.Last4(c.CardNumber), Amount: in.Amount, CurrentDebt: c.CurrentDebt,
			Available: c.Available(), MerchantID: in.MerchantID, Reference: row.Reference, Timestamp: now,
		}
		return nil
	})
	if err != nil {
		guard.Report(entry, "authorize_consumption", err)
		if c != nil && fault.KindOf(err) != fault.Unknown {
			u.recordRejection(ctx, entry, c.ID, in, err)
		}
		return nil, err
	}
	entry.WithField("reference", res.Reference).Info("consumption approved")

	u.notice.Send(ctx, c.OwnerID, "Card purchase approved", fmt.Sprintf(
		"A purchase of %s at %s was charged to card %s. Available credit: %s.",
		notice.Money(in.Amount), in.MerchantLabel, mask.Last4(c.CardNumber), notice.Money(res.Available)))
	u.notice.Send(ctx, merchant.OwnerID, "Card payment received", fmt.Sprintf(
		"You received %s from card %s into account %s.",
		notice.Money(in.Amount), mask.Last4(c.CardNumber), mask.Last4(merchant.AccountNumber)))
	return res, nil
}

// recordRejection appends the REJECTED audit row in its own short
// transaction. Failing to write it never changes the caller's outcome.
func (u *Usecase) recordRejection(ctx context.Context, entry *logrus.Entry, cardID uint64, in AuthorizeInput, cause error) {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Consumptions.Append(ctx, &domain.Consumption{
			CardID: cardID, Amount: in.Amount, Timestamp: u.clock.Now(), MerchantID: in.MerchantID,
			MerchantLabel: in.MerchantLabel, Status: domain.ConsumptionRejected, RejectReason: cause.Error(),
			IsCashAdvance: in.CashAdvance,
		})
	})
	if err != nil {
		entry.WithError(err).Warn("rejected consumption not recorded")
	}
}

// Pay moves min(requested, debt) from the account onto the card. Funds are
// checked against the requested amount.
func (u *Usecase) Pay(ctx context.Context, in PayInput) (*PayResult, error) {
	entry := u.log.WithFields(logrus.Fields{
		"op": "card_payment", "card": mask.Last4(in.CardNumber), "account": mask.Last4(in.AccountNumber), "amount": in.Amount.String(),
	})
	if err := guard.Positive(in.Amount); err != nil {
		guard.Report(entry, "card_payment", err)
		return nil, err
	}
	ctx, err := guard.Begin(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	var (
		c   *domain.Card
		res *PayResult
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if c, err = lock(ctx, r.Cards, in.CardNumber); err != nil {
			return err
		}
		if !c.CurrentDebt.IsPositive() {
			return domain.ErrNoDebt
		}
		acc, err := accountuc.Lock(ctx, r.Accounts, in.AccountNumber)
		if err != nil {
			return err
		}
		if !acc.Covers(in.Amount) {
			return accountDomain.ErrInsufficientFunds
		}

		applied := decimal.Min(in.Amount, c.CurrentDebt)
		if err := acc.Debit(applied); err != nil {
			return err
		}
		c.CurrentDebt = c.CurrentDebt.Sub(applied)
		if err := r.Cards.Save(ctx, c); err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		row := &accountDomain.Transaction{
			Reference:         guard.Reference(),
			AccountID:         acc.ID,
			Amount:            applied,
			Direction:         accountDomain.DirectionDebit,
			CounterpartyLabel: "card " + mask.Last4(c.CardNumber),
			Status:            accountDomain.StatusCompleted,
			OperationType:     accountDomain.OpCardPayment,
			OperatedByUserID:  in.OperatedBy,
			Timestamp:         now,
		}
		if err := r.Transactions.Append(ctx, row); err != nil {
			return err
		}
		res = &PayResult{
			CardNumber: mask.Last4(c.CardNumber), AccountNumber: mask.Last4(acc.AccountNumber),
			Requested: in.Amount, Applied: applied, CurrentDebt: c.CurrentDebt, Balance: acc.Balance,
			Reference: row.Reference, Timestamp: now,
		}
		return nil
	})
	if err != nil {
		guard.Report(entry, "card_payment", err)
		return nil, err
	}
	entry.WithField("applied", res.Applied.String()).Info("card payment applied")

	u.notice.Send(ctx, c.OwnerID, "Card payment received", fmt.Sprintf(
		"A payment of %s was applied to card %s. Remaining debt: %s.",
		notice.Money(res.Applied), res.CardNumber, notice.Money(res.CurrentDebt)))
	return res, nil
}

func (u *Usecase) ListByOwner(ctx context.Context, ownerID string) ([]CardDTO, error) {
	var out []CardDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		cards, err := r.Cards.ListByOwner(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("list cards: %w", err)
		}
		out = make([]CardDTO, 0, len(cards))
		for i := range cards {
			out = append(out, toDTO(&cards[i]))
		}
		return nil
	})
	return out, err
}

// Consumptions lists the newest consumptions of a card first, approved and
// rejected alike. limit <= 0 returns all of them.
func (u *Usecase) Consumptions(ctx context.Context, cardNumber string, limit int) ([]ConsumptionDTO, error) {
	var out []ConsumptionDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Cards.GetByNumber(ctx, cardNumber)
		if err := guard.Found(err, domain.ErrNotFound, "card"); err != nil {
			return err
		}
		rows, err := r.Consumptions.ListByCard(ctx, c.ID, limit)
		if err != nil {
			return fmt.Errorf("list consumptions: %w", err)
		}
		out = make([]ConsumptionDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, ConsumptionDTO{
				Amount: row.Amount, Timestamp: row.Timestamp, MerchantID: row.MerchantID, MerchantLabel: row.MerchantLabel,
				Status: string(row.Status), RejectReason: row.RejectReason, CashAdvance: row.IsCashAdvance,
			})
		}
		return nil
	})
	return out, err
}
