package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories behind one handle so a service can run a
// multi-record operation atomically: Atomically opens a transaction and
// hands the callback a Store bound to it. Everything written through that
// store commits or rolls back as a unit.
type Store interface {
	Users() UserRepository
	Merchants() MerchantRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Accounts() AccountRepository
	Transactions() TransactionRepository

	Atomically(ctx context.Context, fn func(Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository         { return &gormUserRepository{db: s.db} }
func (s *GormStore) Merchants() MerchantRepository { return &gormMerchantRepository{db: s.db} }
func (s *GormStore) Products() ProductRepository   { return &gormProductRepository{db: s.db} }
func (s *GormStore) Carts() CartRepository         { return &gormCartRepository{db: s.db} }
func (s *GormStore) Orders() OrderRepository       { return &gormOrderRepository{db: s.db} }
func (s *GormStore) Accounts() AccountRepository   { return &gormAccountRepository{db: s.db} }
func (s *GormStore) Transactions() TransactionRepository {
	return &gormTransactionRepository{db: s.db}
}

func (s *GormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
