package card

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, c *Card) error
	Save(ctx context.Context, c *Card) error
	GetByNumber(ctx context.Context, number string) (*Card, error)
	GetByNumberForUpdate(ctx context.Context, number string) (*Card, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Card, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	ActiveDebtByOwner(ctx context.Context, ownerID string) (decimal.Decimal, error)
}

type ConsumptionRepository interface {
	Append(ctx context.Context, c *Consumption) error
	ListByCard(ctx context.Context, cardID uint64, limit int) ([]Consumption, error)
}
