package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
)

// LedgerService owns payment accounts and the append-only transaction log.
// A posting updates the balance and appends the entry in one transaction,
// under a row lock on the account, so for every account the invariant
// balance == sum(credits) - sum(debits) holds at all times.
type LedgerService struct {
	store repository.Store
	log   *zap.Logger
}

func NewLedgerService(store repository.Store, log *zap.Logger) *LedgerService {
	return &LedgerService{store: store, log: log}
}

// TransactionInput describes one posting against an account.
type TransactionInput struct {
	AccountID      uint
	AmountCents    int64
	Type           models.TransactionType
	Reason         string
	From           string
	To             string
	Reference      string
	ReferenceModel string
}

// CreateAccount is idempotent: if an account for (userID, accountType)
// already exists it is returned unchanged.
func (s *LedgerService) CreateAccount(ctx context.Context, userID string, accountType models.AccountType) (*models.PaymentAccount, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if !accountType.Valid() {
		return nil, &ValidationError{Field: "account_type", Message: fmt.Sprintf("unknown type %q", accountType)}
	}

	var account *models.PaymentAccount
	err := s.store.Atomically(ctx, func(st repository.Store) error {
		var err error
		account, err = ensureAccount(ctx, st, userID, accountType)
		return err
	})
	return account, err
}

// PostTransaction atomically applies the balance change and appends the
// ledger entry. Debits may push the balance negative; there is no
// overdraft floor.
func (s *LedgerService) PostTransaction(ctx context.Context, in TransactionInput) (*models.PaymentTransaction, error) {
	var txn *models.PaymentTransaction
	err := s.store.Atomically(ctx, func(st repository.Store) error {
		var err error
		txn, err = postTransaction(ctx, st, in)
		return err
	})
	return txn, err
}

func (s *LedgerService) GetAccountByUser(ctx context.Context, userID string) (*models.PaymentAccount, error) {
	account, err := s.store.Accounts().FindFirstByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "payment account", ID: userID}
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListTransactions returns an account's ledger entries, most recent first.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID uint) ([]models.PaymentTransaction, error) {
	if _, err := s.store.Accounts().FindByID(ctx, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "payment account", ID: fmt.Sprint(accountID)}
		}
		return nil, err
	}
	return s.store.Transactions().FindByAccount(ctx, accountID)
}

// ensureAccount resolves, or lazily creates, the (userID, accountType)
// account on an already-open transactional store.
func ensureAccount(ctx context.Context, st repository.Store, userID string, accountType models.AccountType) (*models.PaymentAccount, error) {
	account, err := st.Accounts().FindByOwner(ctx, userID, accountType)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account = &models.PaymentAccount{
		UserID: userID,
		Type:   accountType,
		Status: models.AccountStatusActive,
	}
	if err := st.Accounts().Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// postTransaction applies one posting on an already-open transactional
// store, so checkout can settle merchant credits inside its own unit.
func postTransaction(ctx context.Context, st repository.Store, in TransactionInput) (*models.PaymentTransaction, error) {
	if in.AmountCents < 0 {
		return nil, &ValidationError{Field: "amount", Message: "must not be negative"}
	}

	account, err := st.Accounts().FindByIDForUpdate(ctx, in.AccountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "payment account", ID: fmt.Sprint(in.AccountID)}
	}
	if err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, &InvalidTransactionTypeError{Type: in.Type}
	}

	switch in.Type {
	case models.TransactionCredit:
		account.BalanceCents += in.AmountCents
	case models.TransactionDebit:
		account.BalanceCents -= in.AmountCents
	}
	if err := st.Accounts().Save(ctx, account); err != nil {
		return nil, err
	}

	txn := &models.PaymentTransaction{
		AccountID:      account.ID,
		AmountCents:    in.AmountCents,
		Type:           in.Type,
		Reason:         in.Reason,
		FromID:         in.From,
		ToID:           in.To,
		Reference:      in.Reference,
		ReferenceModel: in.ReferenceModel,
	}
	if err := st.Transactions().Append(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}
