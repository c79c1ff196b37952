package services

import (
	"errors"
	"fmt"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

// ErrEmptyCart is returned by checkout when the customer's cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError covers malformed or missing input. It is always returned
// before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PriceMismatchError means the declared payment amount did not exactly
// equal the computed order total. Amounts are in minor units.
type PriceMismatchError struct {
	DeclaredCents int64
	TotalCents    int64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("declared payment %d does not match order total %d", e.DeclaredCents, e.TotalCents)
}

// InsufficientStockError names the first offending cart line; the whole
// placement fails, nothing is decremented.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StateViolationError rejects a transition attempted from a state that
// does not permit it.
type StateViolationError struct {
	Transition string
	From       models.OrderStatus
}

func (e *StateViolationError) Error() string {
	return fmt.Sprintf("cannot %s an order in state %s", e.Transition, e.From)
}

// ForbiddenError rejects an actor whose role (or identity) does not allow
// the attempted action.
type ForbiddenError struct {
	Role   models.Role
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %s may not %s", e.Role, e.Action)
}

type InvalidTransactionTypeError struct {
	Type models.TransactionType
}

func (e *InvalidTransactionTypeError) Error() string {
	return fmt.Sprintf("invalid transaction type %q", e.Type)
}
