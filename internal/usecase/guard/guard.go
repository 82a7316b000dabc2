// Package guard holds the steps every engine operation shares: entering a
// unit of work, translating store misses and reporting the outcome.
package guard

import (
	"context"
	"errors"
	"fmt"

	"retailbank-backoffice/internal/domain/fault"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Begin refuses an already cancelled caller, then detaches the context so a
// started transaction is never aborted halfway.
func Begin(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return context.WithoutCancel(ctx), nil
}

// Found maps gorm.ErrRecordNotFound to missing and wraps any other error as a
// store fault. Business faults pass through untouched.
func Found(err, missing error, what string) error {
	switch {
	case err == nil:
		return nil
	case fault.KindOf(err) != fault.Unknown:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return missing
	default:
		return fmt.Errorf("load %s: %w", what, err)
	}
}

func Positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fault.ErrInvalidAmount
	}
	return nil
}

// Report logs business rejections at Warn and store faults at Error.
func Report(entry *logrus.Entry, op string, err error) {
	if k := fault.KindOf(err); k != fault.Unknown {
		entry.WithFields(logrus.Fields{"kind": k.String(), "reason": err.Error()}).Warn(op + " rejected")
		return
	}
	entry.WithError(err).Error(op + " failed")
}

// Reference links the legs of one money movement.
func Reference() string { return uuid.NewString() }
