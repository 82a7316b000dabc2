// Package ledgerdb opens a fully migrated in-memory ledger and seeds fixtures
// for engine tests.
package ledgerdb

import (
	"testing"
	"time"

	"retailbank-backoffice/internal/adapter/repository/mysql"
	"retailbank-backoffice/internal/domain/account"
	"retailbank-backoffice/internal/domain/card"
	"retailbank-backoffice/internal/domain/identity"
	"retailbank-backoffice/internal/domain/loan"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a sqlite ":memory:" DB pinned to one connection, so the
// schema survives across pool checkouts and transactions serialize.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func User(t *testing.T, db *gorm.DB, id, name, email string) {
	t.Helper()
	if err := db.Create(&identity.User{ID: id, Name: name, Email: email, IsActive: true}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func Account(t *testing.T, db *gorm.DB, owner, number, balance string, principal bool) *account.Account {
	t.Helper()
	a := &account.Account{AccountNumber: number, OwnerID: owner, Balance: D(balance), IsPrincipal: principal, IsActive: true}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

// Card seeds an active card expiring at expMonth/expYear whose CVC is cvc.
func Card(t *testing.T, db *gorm.DB, owner, number, limit, debt, cvc string, expMonth, expYear int) *card.Card {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(cvc), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash cvc: %v", err)
	}
	c := &card.Card{
		CardNumber: number, OwnerID: owner, CreditLimit: D(limit), CurrentDebt: D(debt),
		ExpMonth: expMonth, ExpYear: expYear, CVCHash: string(hash), IsActive: true,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return c
}

// Loan seeds an active loan whose installments are each worth amount and
// fall due monthly from firstDue on.
func Loan(t *testing.T, db *gorm.DB, owner, number, amount string, count int, firstDue time.Time) *loan.Loan {
	t.Helper()
	each := D(amount)
	total := each.Mul(decimal.NewFromInt(int64(count)))
	l := &loan.Loan{
		LoanNumber: number, OwnerID: owner, PrincipalAmount: total, TermMonths: count,
		AnnualRate: decimal.Zero, MonthlyInstallment: each, InstallmentsTotal: count,
		OutstandingBalance: total, PaymentStatus: loan.StatusCurrent, IsActive: true,
		StartDate: firstDue.AddDate(0, -1, 0),
	}
	for i := 1; i <= count; i++ {
		l.Installments = append(l.Installments, loan.Installment{
			Number: i, DueDate: firstDue.AddDate(0, i-1, 0), Amount: each, RemainingAmount: each,
		})
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l
}

// Transactions returns every ledger row of the account, oldest first.
func Transactions(t *testing.T, db *gorm.DB, accountID uint64) []account.Transaction {
	t.Helper()
	var out []account.Transaction
	if err := db.Where("account_id = ?", accountID).Order("id ASC").Find(&out).Error; err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	return out
}

func Reload[T any](t *testing.T, db *gorm.DB, id uint64) *T {
	t.Helper()
	var out T
	if err := db.First(&out, id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	return &out
}
