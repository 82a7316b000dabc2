package card

import (
	"time"

	domain "retailbank-backoffice/internal/domain/card"
	"retailbank-backoffice/pkg/mask"

	"github.com/shopspring/decimal"
)

type IssueInput struct {
	OwnerID     string          `json:"owner_id"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

type ChangeLimitInput struct {
	CardNumber string          `json:"card_number"`
	NewLimit   decimal.Decimal `json:"new_limit"`
}

type AuthorizeInput struct {
	CardNumber    string          `json:"card_number"`
	ExpMonth      int             `json:"exp_month"`
	ExpYear       int             `json:"exp_year"`
	CVC           string          `json:"cvc"`
	Amount        decimal.Decimal `json:"amount"`
	MerchantID    string          `json:"merchant_id"`
	MerchantLabel string          `json:"merchant_label"`
	CashAdvance   bool            `json:"cash_advance"`
	OperatedBy    string          `json:"operated_by"`
}

type PayInput struct {
	CardNumber    string          `json:"card_number"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	OperatedBy    string          `json:"operated_by"`
}

// CardDTO never carries the full number or anything derived from the CVC.
type CardDTO struct {
	Number      string          `json:"card_number"`
	OwnerID     string          `json:"owner_id"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CurrentDebt decimal.Decimal `json:"current_debt"`
	Available   decimal.Decimal `json:"available_credit"`
	Expiration  string          `json:"expiration"`
	IsActive    bool            `json:"is_active"`
}

func toDTO(c *domain.Card) CardDTO {
	return CardDTO{
		Number:      mask.Last4(c.CardNumber),
		OwnerID:     c.OwnerID,
		CreditLimit: c.CreditLimit,
		CurrentDebt: c.CurrentDebt,
		Available:   c.Available(),
		Expiration:  c.Expiration(),
		IsActive:    c.IsActive,
	}
}

// IssueResult is the only place the clear card number and CVC ever appear.
type IssueResult struct {
	Card       CardDTO `json:"card"`
	CardNumber string  `json:"full_card_number"`
	CVC        string  `json:"cvc"`
}

type AuthorizeResult struct {
	CardNumber  string          `json:"card_number"`
	Amount      decimal.Decimal `json:"amount"`
	CurrentDebt decimal.Decimal `json:"current_debt"`
	Available   decimal.Decimal `json:"available_credit"`
	MerchantID  string          `json:"merchant_id"`
	Reference   string          `json:"reference"`
	Timestamp   time.Time       `json:"timestamp"`
}

type PayResult struct {
	CardNumber    string          `json:"card_number"`
	AccountNumber string          `json:"account_number"`
	Requested     decimal.Decimal `json:"requested"`
	Applied       decimal.Decimal `json:"applied"`
	CurrentDebt   decimal.Decimal `json:"current_debt"`
	Balance       decimal.Decimal `json:"balance"`
	Reference     string          `json:"reference"`
	Timestamp     time.Time       `json:"timestamp"`
}

type ConsumptionDTO struct {
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	MerchantID    string          `json:"merchant_id"`
	MerchantLabel string          `json:"merchant_label"`
	Status        string          `json:"status"`
	RejectReason  string          `json:"reject_reason,omitempty"`
	CashAdvance   bool            `json:"cash_advance"`
}
