// Package underwriting decides loan eligibility against a system-wide
// average-debt threshold and disburses approved loans.
package underwriting

import (
	"retailbank-backoffice/internal/domain/fault"
	domain "retailbank-backoffice/internal/domain/loan"
	loanuc "retailbank-backoffice/internal/usecase/loan"
	"retailbank-backoffice/pkg/amortization"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	Approve            Outcome = "approve"
	RejectHighRisk     Outcome = "reject_high_risk"
	RejectBusinessRule Outcome = "reject_business_rule"
)

// Snapshot is the debt picture the decision is made against.
type Snapshot struct {
	HasActiveLoan     bool
	ExistingDebt      decimal.Decimal
	SystemAverageDebt decimal.Decimal
}

type Request struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermMonths int
	// Override skips the risk checks after a human confirmed the warning.
	Override bool
}

type Decision struct {
	Outcome            Outcome         `json:"outcome"`
	Reason             string          `json:"reason,omitempty"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalRepayable     decimal.Decimal `json:"total_repayable"`
	ExistingDebt       decimal.Decimal `json:"existing_debt"`
	ProjectedDebt      decimal.Decimal `json:"projected_debt"`
	SystemAverageDebt  decimal.Decimal `json:"system_average_debt"`

	err error
}

func (d Decision) Approved() bool { return d.Outcome == Approve }

// Err is the typed rejection, nil when approved.
func (d Decision) Err() error { return d.err }

func reject(d Decision, err error) Decision {
	d.Outcome = RejectBusinessRule
	if fault.KindOf(err) == fault.HighRiskRejection {
		d.Outcome = RejectHighRisk
	}
	d.Reason = err.Error()
	d.err = err
	return d
}

// Evaluate never touches storage. The active-loan and term checks hold even
// under Override.
func Evaluate(s Snapshot, req Request) Decision {
	d := Decision{ExistingDebt: s.ExistingDebt, SystemAverageDebt: s.SystemAverageDebt}

	if s.HasActiveLoan {
		return reject(d, domain.ErrActiveLoanExists)
	}
	if !domain.ValidTerm(req.TermMonths) {
		return reject(d, domain.ErrInvalidTerm)
	}
	if !req.Principal.IsPositive() {
		return reject(d, fault.ErrInvalidAmount)
	}
	if !loanuc.ValidRate(req.AnnualRate) {
		return reject(d, domain.ErrInvalidRate)
	}

	d.MonthlyInstallment = amortization.Installment(req.Principal, req.AnnualRate, req.TermMonths)
	d.TotalRepayable = d.MonthlyInstallment.Mul(decimal.NewFromInt(int64(req.TermMonths)))
	d.ProjectedDebt = s.ExistingDebt.Add(d.TotalRepayable)

	if !req.Override && s.SystemAverageDebt.IsPositive() {
		if s.ExistingDebt.GreaterThan(s.SystemAverageDebt) {
			return reject(d, ErrAlreadyAboveAverage)
		}
		if d.ProjectedDebt.GreaterThan(s.SystemAverageDebt) {
			return reject(d, ErrWouldExceedAverage)
		}
	}
	d.Outcome = Approve
	return d
}

var (
	ErrAlreadyAboveAverage = fault.New(fault.HighRiskRejection, "client debt is already above the system average debt")
	ErrWouldExceedAverage  = fault.New(fault.HighRiskRejection, "this loan would push the client above the system average debt")
)
