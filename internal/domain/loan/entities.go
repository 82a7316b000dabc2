package loan

import (
	"time"

	"retailbank-backoffice/pkg/clock"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusCurrent   PaymentStatus = "current"
	StatusInArrears PaymentStatus = "in_arrears"
)

const (
	MinTermMonths  = 6
	MaxTermMonths  = 60
	TermStepMonths = 6
)

type Loan struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanNumber         string          `gorm:"size:9;uniqueIndex:ux_loans_number" json:"loan_number"`
	OwnerID            string          `gorm:"size:32;index:idx_loans_owner_active" json:"owner_id"`
	PrincipalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal_amount"`
	TermMonths         int             `json:"term_months"`
	AnnualRate         decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"annual_rate"`
	MonthlyInstallment decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"monthly_installment"`
	InstallmentsTotal  int             `json:"installments_total"`
	InstallmentsPaid   int             `json:"installments_paid"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"outstanding_balance"`
	PaymentStatus      PaymentStatus   `gorm:"size:16" json:"payment_status"`
	IsActive           bool            `gorm:"index:idx_loans_owner_active" json:"is_active"`
	StartDate          time.Time       `json:"start_date"`
	Installments       []Installment   `gorm:"foreignKey:LoanID" json:"installments,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Usable rejects inactive loans and loans with nothing left to pay.
func (l *Loan) Usable() error {
	if !l.IsActive {
		return ErrInactive
	}
	if !l.OutstandingBalance.IsPositive() {
		return ErrNoPendingBalance
	}
	return nil
}

// Refresh recomputes the derived counters from the installment list.
func (l *Loan) Refresh(today time.Time) {
	paid := 0
	arrears := false
	for _, in := range l.Installments {
		if in.Paid {
			paid++
		}
		if in.Overdue(today) {
			arrears = true
		}
	}
	l.InstallmentsPaid = paid
	l.PaymentStatus = StatusCurrent
	if arrears {
		l.PaymentStatus = StatusInArrears
	}
}

// UnpaidRemaining sums the remaining amount of every unpaid installment.
func (l *Loan) UnpaidRemaining() decimal.Decimal {
	sum := decimal.Zero
	for _, in := range l.Installments {
		if !in.Paid {
			sum = sum.Add(in.RemainingAmount)
		}
	}
	return sum
}

func (l *Loan) FullyPaid() bool {
	return len(l.Installments) > 0 && l.InstallmentsPaid == len(l.Installments)
}

type Installment struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          uint64          `gorm:"uniqueIndex:ux_installments_loan_number" json:"-"`
	Number          int             `gorm:"uniqueIndex:ux_installments_loan_number" json:"number"`
	DueDate         time.Time       `json:"due_date"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	Interest        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"interest"`
	Principal       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal"`
	Paid            bool            `json:"paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

func (Installment) TableName() string { return "installments" }

// Overdue is derived, never stored.
func (i Installment) Overdue(today time.Time) bool {
	return !i.Paid && clock.Day(i.DueDate).Before(clock.Day(today))
}

// Due is what is still owed on the installment. A remaining amount that was
// never set falls back to the full amount.
func (i Installment) Due() decimal.Decimal {
	if i.RemainingAmount.IsZero() && !i.Paid {
		return i.Amount
	}
	return i.RemainingAmount
}

// ValidTerm reports whether months is a multiple of 6 within [6, 60].
func ValidTerm(months int) bool {
	return months >= MinTermMonths && months <= MaxTermMonths && months%TermStepMonths == 0
}
