package mysql

import (
	"context"

	cardDomain "retailbank-backoffice/internal/domain/card"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CardRepository struct{ db *gorm.DB }

func NewCardRepository(db *gorm.DB) *CardRepository { return &CardRepository{db: db} }

func (r *CardRepository) Create(ctx context.Context, c *cardDomain.Card) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CardRepository) Save(ctx context.Context, c *cardDomain.Card) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CardRepository) GetByNumber(ctx context.Context, number string) (*cardDomain.Card, error) {
	var out cardDomain.Card
	res := r.db.WithContext(ctx).Where("card_number = ?", number).First(&out)
	return &out, res.Error
}

func (r *CardRepository) GetByNumberForUpdate(ctx context.Context, number string) (*cardDomain.Card, error) {
	var out cardDomain.Card
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("card_number = ?", number).
		First(&out)
	return &out, res.Error
}

func (r *CardRepository) ListByOwner(ctx context.Context, ownerID string) ([]cardDomain.Card, error) {
	var out []cardDomain.Card
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id DESC").Find(&out)
	return out, res.Error
}

func (r *CardRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&cardDomain.Card{}).Where("card_number = ?", number).Count(&n)
	return n > 0, res.Error
}

func (r *CardRepository) ActiveDebtByOwner(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	var out struct{ Total decimal.Decimal }
	res := r.db.WithContext(ctx).
		Model(&cardDomain.Card{}).
		Select("COALESCE(SUM(current_debt), 0) AS total").
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Scan(&out)
	return out.Total, res.Error
}

type ConsumptionRepository struct{ db *gorm.DB }

func NewConsumptionRepository(db *gorm.DB) *ConsumptionRepository {
	return &ConsumptionRepository{db: db}
}

func (r *ConsumptionRepository) Append(ctx context.Context, c *cardDomain.Consumption) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConsumptionRepository) ListByCard(ctx context.Context, cardID uint64, limit int) ([]cardDomain.Consumption, error) {
	var out []cardDomain.Consumption
	q := r.db.WithContext(ctx).Where("card_id = ?", cardID).Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	res := q.Find(&out)
	return out, res.Error
}
