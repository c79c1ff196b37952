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

// Actor is the authenticated identity behind a transition request.
type Actor struct {
	UserID string
	Role   models.Role
}

// OrderFlowService applies role-gated status transitions on existing
// orders. Every transition locks the order row, checks the current status
// against the legal edge set and writes exactly one state change; the
// ledger and the order items are never touched here.
type OrderFlowService struct {
	store  repository.Store
	events OrderEvents
	log    *zap.Logger
}

func NewOrderFlowService(store repository.Store, events OrderEvents, log *zap.Logger) *OrderFlowService {
	return &OrderFlowService{store: store, events: events, log: log}
}

// transition names one edge of the state machine: who may take it and
// which statuses it is legal from.
type transition struct {
	name  string
	roles []models.Role
	from  []models.OrderStatus
}

func (t transition) allows(role models.Role) bool {
	for _, r := range t.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (t transition) permits(status models.OrderStatus) bool {
	for _, s := range t.from {
		if s == status {
			return true
		}
	}
	return false
}

var (
	tConfirm = transition{
		name:  "confirm",
		roles: []models.Role{models.RoleCustomer},
		from:  []models.OrderStatus{models.OrderStatusPending},
	}
	tAssignDsp = transition{
		name:  "assign a courier to",
		roles: []models.Role{models.RoleMerchant, models.RoleAdmin},
		from:  []models.OrderStatus{models.OrderStatusConfirmed},
	}
	tReassignDsp = transition{
		name:  "reassign a courier to",
		roles: []models.Role{models.RoleMerchant, models.RoleAdmin},
		from:  []models.OrderStatus{models.OrderStatusDspRejected},
	}
	tDspAccept = transition{
		name:  "accept",
		roles: []models.Role{models.RoleDSP},
		from:  []models.OrderStatus{models.OrderStatusDspAssigned},
	}
	tDspReject = transition{
		name:  "reject",
		roles: []models.Role{models.RoleDSP},
		from:  []models.OrderStatus{models.OrderStatusDspAssigned},
	}
	tStartShipping = transition{
		name:  "start shipping",
		roles: []models.Role{models.RoleDSP},
		from:  []models.OrderStatus{models.OrderStatusDspAccepted},
	}
	tMarkDelivered = transition{
		name:  "mark delivery of",
		roles: []models.Role{models.RoleCustomer},
		from:  []models.OrderStatus{models.OrderStatusOnShipping},
	}
)

// Confirm moves a freshly placed order to CONFIRMED and flags the
// merchant notification. The payment status is defaulted, not overwritten.
func (s *OrderFlowService) Confirm(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tConfirm, func(o *models.Order) error {
		if actor.UserID != o.CustomerID {
			return &ForbiddenError{Role: actor.Role, Action: "confirm another customer's order"}
		}
		o.Status = models.OrderStatusConfirmed
		if o.Payment.Status == "" {
			o.Payment.Status = models.PaymentStatusPending
		}
		o.MerchantNotified = true
		return nil
	})
}

func (s *OrderFlowService) AssignDsp(ctx context.Context, orderID uint, actor Actor, dspID string) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tAssignDsp, func(o *models.Order) error {
		if err := s.checkDsp(ctx, dspID); err != nil {
			return err
		}
		o.DspID = &dspID
		o.Status = models.OrderStatusDspAssigned
		return nil
	})
}

// ReassignDsp is the one back-edge of the machine: a rejected order goes
// back to DspAssigned with a new courier.
func (s *OrderFlowService) ReassignDsp(ctx context.Context, orderID uint, actor Actor, dspID string) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tReassignDsp, func(o *models.Order) error {
		if err := s.checkDsp(ctx, dspID); err != nil {
			return err
		}
		o.DspID = &dspID
		o.Status = models.OrderStatusDspAssigned
		return nil
	})
}

func (s *OrderFlowService) DspAccept(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tDspAccept, func(o *models.Order) error {
		if err := requireAssignedDsp(o, actor); err != nil {
			return err
		}
		o.Status = models.OrderStatusDspAccepted
		return nil
	})
}

func (s *OrderFlowService) DspReject(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tDspReject, func(o *models.Order) error {
		if err := requireAssignedDsp(o, actor); err != nil {
			return err
		}
		o.Status = models.OrderStatusDspRejected
		return nil
	})
}

func (s *OrderFlowService) StartShipping(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tStartShipping, func(o *models.Order) error {
		if err := requireAssignedDsp(o, actor); err != nil {
			return err
		}
		o.Status = models.OrderStatusOnShipping
		return nil
	})
}

func (s *OrderFlowService) MarkDelivered(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	return s.apply(ctx, orderID, actor, tMarkDelivered, func(o *models.Order) error {
		if actor.UserID != o.CustomerID {
			return &ForbiddenError{Role: actor.Role, Action: "confirm delivery of another customer's order"}
		}
		o.Status = models.OrderStatusDelivered
		return nil
	})
}

func (s *OrderFlowService) apply(ctx context.Context, orderID uint, actor Actor, t transition, mutate func(*models.Order) error) (*models.Order, error) {
	if !t.allows(actor.Role) {
		return nil, &ForbiddenError{Role: actor.Role, Action: t.name + " an order"}
	}

	var order *models.Order
	err := s.store.Atomically(ctx, func(st repository.Store) error {
		o, err := st.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "order", ID: fmt.Sprint(orderID)}
		}
		if err != nil {
			return err
		}
		if !t.permits(o.Status) {
			return &StateViolationError{Transition: t.name, From: o.Status}
		}
		if err := mutate(o); err != nil {
			return err
		}
		if err := st.Orders().Save(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order transition",
		zap.Uint("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("actor", actor.UserID),
		zap.String("role", string(actor.Role)))
	if s.events != nil {
		s.events.OrderUpdated(*order)
	}
	return order, nil
}

// checkDsp verifies the target user exists and actually is a courier.
func (s *OrderFlowService) checkDsp(ctx context.Context, dspID string) error {
	if dspID == "" {
		return &ValidationError{Field: "dsp_id", Message: "must not be empty"}
	}
	user, err := s.store.Users().FindByID(ctx, dspID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: "dsp", ID: dspID}
	}
	if err != nil {
		return err
	}
	if user.Role != models.RoleDSP {
		return &ValidationError{Field: "dsp_id", Message: "user is not a delivery service provider"}
	}
	return nil
}

// requireAssignedDsp rejects courier actions from anyone but the courier
// currently assigned to the order.
func requireAssignedDsp(o *models.Order, actor Actor) error {
	if o.DspID == nil || *o.DspID != actor.UserID {
		return &ForbiddenError{Role: actor.Role, Action: "act on an order assigned to another courier"}
	}
	return nil
}
