package loan

import "retailbank-backoffice/internal/domain/fault"

var (
	ErrNotFound         = fault.New(fault.NotFound, "loan not found")
	ErrInactive         = fault.New(fault.InactiveResource, "loan is inactive")
	ErrNoPendingBalance = fault.New(fault.BusinessRuleViolation, "loan has no pending balance")
	ErrNothingCovered   = fault.New(fault.BusinessRuleViolation, "no installment could be covered by the amount given")
	ErrActiveLoanExists = fault.New(fault.BusinessRuleViolation, "client already has an active loan")
	ErrInvalidTerm      = fault.New(fault.InvalidTerm, "term must be a multiple of 6 between 6 and 60 months")
	ErrInvalidRate      = fault.New(fault.InvalidAmount, "annual rate must be between 0 and 100")
)
