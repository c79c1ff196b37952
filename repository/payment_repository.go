package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

// AccountRepository stores payment accounts. FindByIDForUpdate takes a row
// lock so concurrent postings against the same account serialize; callers
// must use it for any balance mutation.
type AccountRepository interface {
	Create(ctx context.Context, account *models.PaymentAccount) error
	Save(ctx context.Context, account *models.PaymentAccount) error
	FindByID(ctx context.Context, id uint) (*models.PaymentAccount, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.PaymentAccount, error)
	FindByOwner(ctx context.Context, userID string, accountType models.AccountType) (*models.PaymentAccount, error)
	FindFirstByUser(ctx context.Context, userID string) (*models.PaymentAccount, error)
}

// TransactionRepository is append-only: ledger entries are never updated
// or deleted once written.
type TransactionRepository interface {
	Append(ctx context.Context, txn *models.PaymentTransaction) error
	FindByAccount(ctx context.Context, accountID uint) ([]models.PaymentTransaction, error)
}

type gormAccountRepository struct {
	db *gorm.DB
}

func (r *gormAccountRepository) Create(ctx context.Context, account *models.PaymentAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *gormAccountRepository) Save(ctx context.Context, account *models.PaymentAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *gormAccountRepository) FindByID(ctx context.Context, id uint) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepository) FindByOwner(ctx context.Context, userID string, accountType models.AccountType) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, accountType).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepository) FindFirstByUser(ctx context.Context, userID string) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

type gormTransactionRepository struct {
	db *gorm.DB
}

func (r *gormTransactionRepository) Append(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *gormTransactionRepository) FindByAccount(ctx context.Context, accountID uint) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Find(&txns).Error
	return txns, err
}
