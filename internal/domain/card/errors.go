package card

import "retailbank-backoffice/internal/domain/fault"

var (
	ErrNotFound        = fault.New(fault.NotFound, "card not found")
	ErrInactive        = fault.New(fault.InactiveResource, "card is inactive")
	ErrExpired         = fault.New(fault.BusinessRuleViolation, "card is expired")
	ErrDataMismatch    = fault.New(fault.BusinessRuleViolation, "card data does not match")
	ErrLimitExceeded   = fault.New(fault.LimitExceeded, "consumption exceeds the available credit")
	ErrLimitBelowDebt  = fault.New(fault.BusinessRuleViolation, "new limit is below the current debt")
	ErrOutstandingDebt = fault.New(fault.BusinessRuleViolation, "card still carries debt")
	ErrNoDebt          = fault.New(fault.BusinessRuleViolation, "card has no debt to pay")
)
