// Package fault is the closed set of business failure kinds returned by the
// engines. Anything that is not a *fault.Error is an unexpected store fault.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	NotFound
	InactiveResource
	InsufficientFunds
	LimitExceeded
	InvalidAmount
	InvalidTerm
	HighRiskRejection
	BusinessRuleViolation
	DuplicateIdentifier
)

var kindNames = map[Kind]string{
	Unknown:               "unknown",
	NotFound:              "not_found",
	InactiveResource:      "inactive_resource",
	InsufficientFunds:     "insufficient_funds",
	LimitExceeded:         "limit_exceeded",
	InvalidAmount:         "invalid_amount",
	InvalidTerm:           "invalid_term",
	HighRiskRejection:     "high_risk_rejection",
	BusinessRuleViolation: "business_rule_violation",
	DuplicateIdentifier:   "duplicate_identifier",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind Kind
	Msg  string
}

func New(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

func (e *Error) Error() string { return e.Msg }

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// ErrInvalidAmount is shared by every engine that moves money.
var ErrInvalidAmount = New(InvalidAmount, "amount must be greater than zero")
