package mysql

import (
	"context"

	loanDomain "retailbank-backoffice/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func orderedInstallments(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *LoanRepository) GetByNumber(ctx context.Context, number string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Preload("Installments", orderedInstallments).
		Where("loan_number = ?", number).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByNumberForUpdate(ctx context.Context, number string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_number = ?", number).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetActiveByOwner(ctx context.Context, ownerID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListByOwner(ctx context.Context, ownerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id DESC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListActive(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Preload("Installments", orderedInstallments).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Where("loan_number = ?", number).Count(&n)
	return n > 0, res.Error
}

func (r *LoanRepository) OutstandingByOwner(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	var out struct{ Total decimal.Decimal }
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Select("COALESCE(SUM(outstanding_balance), 0) AS total").
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Scan(&out)
	return out.Total, res.Error
}

func (r *LoanRepository) SystemDebt(ctx context.Context) (loanDomain.SystemDebt, error) {
	var out struct {
		Total     decimal.Decimal
		Borrowers int64
	}
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Select("COALESCE(SUM(outstanding_balance), 0) AS total, COUNT(DISTINCT owner_id) AS borrowers").
		Where("is_active = ?", true).
		Scan(&out)
	return loanDomain.SystemDebt{Outstanding: out.Total, Borrowers: out.Borrowers}, res.Error
}

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]loanDomain.Installment, error) {
	var out []loanDomain.Installment
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("number ASC").Find(&out)
	return out, res.Error
}

func (r *InstallmentRepository) SaveAll(ctx context.Context, items []loanDomain.Installment) error {
	db := r.db.WithContext(ctx)
	for i := range items {
		if err := db.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
