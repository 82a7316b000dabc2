package account

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error
	GetByNumber(ctx context.Context, number string) (*Account, error)
	// row-locked read, only meaningful inside a unit of work
	GetByNumberForUpdate(ctx context.Context, number string) (*Account, error)
	GetPrincipalByOwnerForUpdate(ctx context.Context, ownerID string) (*Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Account, error)
	NumberExists(ctx context.Context, number string) (bool, error)
}

type TransactionRepository interface {
	Append(ctx context.Context, txs ...*Transaction) error
	ListByAccount(ctx context.Context, accountID uint64, limit int) ([]Transaction, error)
}
