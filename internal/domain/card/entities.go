package card

import (
	"fmt"
	"time"

	"retailbank-backoffice/pkg/clock"

	"github.com/shopspring/decimal"
)

// ValidityYears is how long a freshly issued card stays valid.
const ValidityYears = 3

type Card struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	CardNumber  string          `gorm:"size:16;uniqueIndex:ux_credit_cards_number" json:"card_number"`
	OwnerID     string          `gorm:"size:32;index:idx_credit_cards_owner" json:"owner_id"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"credit_limit"`
	CurrentDebt decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"current_debt"`
	ExpMonth    int             `json:"exp_month"`
	ExpYear     int             `json:"exp_year"` // two digits
	CVCHash     string          `gorm:"size:60" json:"-"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Card) TableName() string { return "credit_cards" }

// Expiration formats as MM/YY.
func (c *Card) Expiration() string { return fmt.Sprintf("%02d/%02d", c.ExpMonth, c.ExpYear) }

// ValidThrough is the last calendar day of the expiration month.
func (c *Card) ValidThrough() time.Time {
	return clock.EndOfMonth(time.Date(2000+c.ExpYear, time.Month(c.ExpMonth), 1, 0, 0, 0, 0, time.UTC))
}

func (c *Card) Expired(now time.Time) bool { return clock.Day(now).After(c.ValidThrough()) }

// SetExpiration stamps the card valid for ValidityYears from issuedAt.
func (c *Card) SetExpiration(issuedAt time.Time) {
	exp := issuedAt.UTC().AddDate(ValidityYears, 0, 0)
	c.ExpMonth = int(exp.Month())
	c.ExpYear = exp.Year() % 100
}

func (c *Card) Available() decimal.Decimal { return c.CreditLimit.Sub(c.CurrentDebt) }

func (c *Card) Usable() error {
	if !c.IsActive {
		return ErrInactive
	}
	return nil
}

type ConsumptionStatus string

const (
	ConsumptionApproved ConsumptionStatus = "APPROVED"
	ConsumptionRejected ConsumptionStatus = "REJECTED"
)

// Consumption is an append-only purchase record against a card.
type Consumption struct {
	ID            uint64            `gorm:"primaryKey;column:id" json:"-"`
	CardID        uint64            `gorm:"index:idx_consumptions_card" json:"-"`
	Amount        decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"amount"`
	Timestamp     time.Time         `json:"timestamp"`
	MerchantID    string            `gorm:"size:32" json:"merchant_id"`
	MerchantLabel string            `gorm:"size:128" json:"merchant_label"`
	Status        ConsumptionStatus `gorm:"size:16" json:"status"`
	RejectReason  string            `gorm:"size:128" json:"reject_reason,omitempty"`
	IsCashAdvance bool              `json:"is_cash_advance"`
}

func (Consumption) TableName() string { return "consumptions" }
