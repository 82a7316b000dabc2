package mysql

import (
	"context"

	accountDomain "retailbank-backoffice/internal/domain/account"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) Save(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("account_number = ?", number).First(&out)
	return &out, res.Error
}

func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, number string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", number).
		First(&out)
	return &out, res.Error
}

func (r *AccountRepository) GetPrincipalByOwnerForUpdate(ctx context.Context, ownerID string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND is_principal = ?", ownerID, true).
		Order("id ASC").
		First(&out)
	return &out, res.Error
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]accountDomain.Account, error) {
	var out []accountDomain.Account
	res := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("is_principal DESC, account_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *AccountRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&accountDomain.Account{}).Where("account_number = ?", number).Count(&n)
	return n > 0, res.Error
}

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, txs ...*accountDomain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(txs).Error
}

// ListByAccount returns the newest rows first. limit <= 0 means no limit.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]accountDomain.Transaction, error) {
	var out []accountDomain.Transaction
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	res := q.Find(&out)
	return out, res.Error
}
