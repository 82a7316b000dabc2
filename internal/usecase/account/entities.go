package account

import (
	"time"

	domain "retailbank-backoffice/internal/domain/account"

	"github.com/shopspring/decimal"
)

type TransferKind string

const (
	KindExpress     TransferKind = "express"
	KindBeneficiary TransferKind = "beneficiary"
	KindThirdParty  TransferKind = "third_party"
)

func (k TransferKind) operation() (domain.OperationType, bool) {
	switch k {
	case KindExpress:
		return domain.OpExpressTransfer, true
	case KindBeneficiary:
		return domain.OpBeneficiaryTransfer, true
	case KindThirdParty:
		return domain.OpThirdPartyTransfer, true
	}
	return "", false
}

type MovementInput struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Label         string          `json:"label"`
	OperatedBy    string          `json:"operated_by"`
}

type TransferInput struct {
	Kind              TransferKind    `json:"kind"`
	SourceNumber      string          `json:"source_account_number"`
	DestinationNumber string          `json:"destination_account_number"`
	Amount            decimal.Decimal `json:"amount"`
	Label             string          `json:"label"`
	OperatedBy        string          `json:"operated_by"`
}

type OpenInput struct {
	OwnerID    string `json:"owner_id"`
	OperatedBy string `json:"operated_by"`
}

type CancelInput struct {
	AccountNumber string `json:"account_number"`
	OperatedBy    string `json:"operated_by"`
}

type AccountDTO struct {
	AccountNumber string          `json:"account_number"`
	OwnerID       string          `json:"owner_id"`
	Balance       decimal.Decimal `json:"balance"`
	IsPrincipal   bool            `json:"is_principal"`
	IsActive      bool            `json:"is_active"`
}

func toDTO(a *domain.Account) *AccountDTO {
	return &AccountDTO{
		AccountNumber: a.AccountNumber,
		OwnerID:       a.OwnerID,
		Balance:       a.Balance,
		IsPrincipal:   a.IsPrincipal,
		IsActive:      a.IsActive,
	}
}

type MovementResult struct {
	Reference     string          `json:"reference"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
}

type TransferResult struct {
	Reference         string          `json:"reference"`
	SourceNumber      string          `json:"source_account_number"`
	DestinationNumber string          `json:"destination_account_number"`
	Amount            decimal.Decimal `json:"amount"`
	SourceBalance     decimal.Decimal `json:"source_balance"`
	Timestamp         time.Time       `json:"timestamp"`
}

type CancelResult struct {
	AccountNumber   string          `json:"account_number"`
	SweptAmount     decimal.Decimal `json:"swept_amount"`
	PrincipalNumber string          `json:"principal_account_number"`
}

type StatementDTO struct {
	Account      *AccountDTO          `json:"account"`
	Transactions []domain.Transaction `json:"transactions"`
}
