package loan

import (
	"time"

	domain "retailbank-backoffice/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type ChangeRateInput struct {
	LoanNumber    string          `json:"loan_number"`
	NewAnnualRate decimal.Decimal `json:"new_annual_rate"`
	OperatedBy    string          `json:"operated_by"`
}

type LoanDTO struct {
	LoanNumber         string          `json:"loan_number"`
	OwnerID            string          `json:"owner_id"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	TermMonths         int             `json:"term_months"`
	AnnualRate         decimal.Decimal `json:"annual_rate"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	InstallmentsTotal  int             `json:"installments_total"`
	InstallmentsPaid   int             `json:"installments_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	PaymentStatus      string          `json:"payment_status"`
	IsActive           bool            `json:"is_active"`
	StartDate          time.Time       `json:"start_date"`
}

type InstallmentDTO struct {
	Number          int             `json:"number"`
	DueDate         time.Time       `json:"due_date"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Interest        decimal.Decimal `json:"interest"`
	Principal       decimal.Decimal `json:"principal"`
	Paid            bool            `json:"paid"`
	Overdue         bool            `json:"overdue"`
}

type ScheduleDTO struct {
	Loan         LoanDTO          `json:"loan"`
	Installments []InstallmentDTO `json:"installments"`
}

type RateChangeResult struct {
	Loan               LoanDTO         `json:"loan"`
	PreviousRate       decimal.Decimal `json:"previous_rate"`
	NewInstallment     decimal.Decimal `json:"new_installment"`
	RecomputedCount    int             `json:"recomputed_installments"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

func ToDTO(l *domain.Loan) LoanDTO {
	return LoanDTO{
		LoanNumber:         l.LoanNumber,
		OwnerID:            l.OwnerID,
		PrincipalAmount:    l.PrincipalAmount,
		TermMonths:         l.TermMonths,
		AnnualRate:         l.AnnualRate,
		MonthlyInstallment: l.MonthlyInstallment,
		InstallmentsTotal:  l.InstallmentsTotal,
		InstallmentsPaid:   l.InstallmentsPaid,
		OutstandingBalance: l.OutstandingBalance,
		PaymentStatus:      string(l.PaymentStatus),
		IsActive:           l.IsActive,
		StartDate:          l.StartDate,
	}
}

func toSchedule(l *domain.Loan, today time.Time) *ScheduleDTO {
	out := &ScheduleDTO{Loan: ToDTO(l), Installments: make([]InstallmentDTO, 0, len(l.Installments))}
	for _, in := range l.Installments {
		out.Installments = append(out.Installments, InstallmentDTO{
			Number:          in.Number,
			DueDate:         in.DueDate,
			Amount:          in.Amount,
			RemainingAmount: in.RemainingAmount,
			Interest:        in.Interest,
			Principal:       in.Principal,
			Paid:            in.Paid,
			Overdue:         in.Overdue(today),
		})
	}
	return out
}
