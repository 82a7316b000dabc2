package account

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	AccountNumber string          `gorm:"size:9;uniqueIndex:ux_savings_accounts_number" json:"account_number"`
	OwnerID       string          `gorm:"size:32;index:idx_savings_accounts_owner" json:"owner_id"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance"`
	IsPrincipal   bool            `json:"is_principal"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "savings_accounts" }

// Usable rejects inactive accounts.
func (a *Account) Usable() error {
	if !a.IsActive {
		return ErrInactive
	}
	return nil
}

// Covers reports whether the balance can absorb amount.
func (a *Account) Covers(amount decimal.Decimal) bool { return a.Balance.GreaterThanOrEqual(amount) }

func (a *Account) Credit(amount decimal.Decimal) { a.Balance = a.Balance.Add(amount) }

// Debit fails without touching the balance when funds are short.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !a.Covers(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

type OperationType string

const (
	OpDeposit             OperationType = "deposit"
	OpWithdrawal          OperationType = "withdrawal"
	OpExpressTransfer     OperationType = "express_transfer"
	OpBeneficiaryTransfer OperationType = "beneficiary_transfer"
	OpThirdPartyTransfer  OperationType = "third_party_transfer"
	OpLoanDisbursement    OperationType = "loan_disbursement"
	OpLoanPayment         OperationType = "loan_payment"
	OpCardPayment         OperationType = "card_payment"
	OpMerchantSettlement  OperationType = "merchant_settlement"
	OpAccountSweep        OperationType = "account_sweep"
)

const StatusCompleted = "completed"

// Transaction is an append-only ledger row against one account.
type Transaction struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	Reference         string          `gorm:"size:36;index:idx_transactions_reference" json:"reference"`
	AccountID         uint64          `gorm:"index:idx_transactions_account" json:"-"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Direction         Direction       `gorm:"size:8" json:"direction"`
	CounterpartyLabel string          `gorm:"size:128" json:"counterparty"`
	Status            string          `gorm:"size:16" json:"status"`
	OperationType     OperationType   `gorm:"size:32" json:"operation_type"`
	OperatedByUserID  string          `gorm:"size:32" json:"operated_by"`
	Timestamp         time.Time       `json:"timestamp"`
}

func (Transaction) TableName() string { return "transactions" }
