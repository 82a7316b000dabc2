package account

import "retailbank-backoffice/internal/domain/fault"

var (
	ErrNotFound          = fault.New(fault.NotFound, "account not found")
	ErrNoPrincipal       = fault.New(fault.NotFound, "owner has no principal account")
	ErrInactive          = fault.New(fault.InactiveResource, "account is inactive")
	ErrInsufficientFunds = fault.New(fault.InsufficientFunds, "insufficient funds")
	ErrSameAccount       = fault.New(fault.BusinessRuleViolation, "source and destination accounts must differ")
	ErrOwnerMismatch     = fault.New(fault.BusinessRuleViolation, "express transfers require accounts of the same owner")
	ErrCancelPrincipal   = fault.New(fault.BusinessRuleViolation, "principal account cannot be cancelled")
	ErrPrincipalExists   = fault.New(fault.BusinessRuleViolation, "owner already has a principal account")
)
