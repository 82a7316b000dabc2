// Package numbering allocates account, loan and card numbers by drawing at
// random and retrying on collision.
package numbering

import (
	"context"
	"fmt"

	"retailbank-backoffice/internal/domain/fault"
	"retailbank-backoffice/internal/domain/uow"
	"retailbank-backoffice/pkg/id"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 10
	ShortLength        = 9
	CardLength         = 16
	CardPrefix         = '4'
)

var ErrExhausted = fault.New(fault.DuplicateIdentifier, "could not allocate a unique number")

type Generator struct {
	maxAttempts int
	digits      func(n int) (string, error)
	luhn        func(prefix byte, n int) (string, error)
	log         *logrus.Logger
}

func New(maxAttempts int, log *logrus.Logger) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{maxAttempts: maxAttempts, digits: id.NewDigits, luhn: id.NewLuhn, log: log}
}

// WithDrawers replaces the random sources, for deterministic tests.
func (g *Generator) WithDrawers(digits func(int) (string, error), luhn func(byte, int) (string, error)) *Generator {
	if digits != nil {
		g.digits = digits
	}
	if luhn != nil {
		g.luhn = luhn
	}
	return g
}

// ShortNumber returns a 9-digit number unused by both loans and accounts.
// The two share one namespace because either can be searched by number.
func (g *Generator) ShortNumber(ctx context.Context, r uow.Repos) (string, error) {
	return g.draw(ctx, "short", func() (string, error) { return g.digits(ShortLength) }, func(n string) (bool, error) {
		taken, err := r.Loans.NumberExists(ctx, n)
		if err != nil || taken {
			return taken, err
		}
		return r.Accounts.NumberExists(ctx, n)
	})
}

// CardNumber returns a Luhn-valid 16-digit card number not yet issued.
func (g *Generator) CardNumber(ctx context.Context, r uow.Repos) (string, error) {
	return g.draw(ctx, "card", func() (string, error) { return g.luhn(CardPrefix, CardLength) }, func(n string) (bool, error) {
		return r.Cards.NumberExists(ctx, n)
	})
}

func (g *Generator) draw(ctx context.Context, space string, next func() (string, error), taken func(string) (bool, error)) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		n, err := next()
		if err != nil {
			return "", fmt.Errorf("draw %s number: %w", space, err)
		}
		exists, err := taken(n)
		if err != nil {
			return "", fmt.Errorf("check %s number: %w", space, err)
		}
		if !exists {
			return n, nil
		}
		g.log.WithFields(logrus.Fields{"space": space, "attempt": attempt}).Debug("number collision, redrawing")
	}
	g.log.WithFields(logrus.Fields{"space": space, "attempts": g.maxAttempts}).Error("number space exhausted")
	return "", ErrExhausted
}
