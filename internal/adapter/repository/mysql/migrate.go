package mysql

import (
	"retailbank-backoffice/internal/domain/account"
	"retailbank-backoffice/internal/domain/card"
	"retailbank-backoffice/internal/domain/identity"
	"retailbank-backoffice/internal/domain/loan"

	"gorm.io/gorm"
)

// Models lists every table the ledger owns, plus the users table it reads.
func Models() []any {
	return []any{
		&identity.User{},
		&account.Account{},
		&account.Transaction{},
		&loan.Loan{},
		&loan.Installment{},
		&card.Card{},
		&card.Consumption{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
