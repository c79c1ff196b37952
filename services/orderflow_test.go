package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

func seedUser(t *testing.T, s *fakeStore, id string, role models.Role) {
	t.Helper()
	require.NoError(t, s.Users().Create(context.Background(), &models.User{
		ID: id, Email: id + "@example.com", Role: role, Approved: true,
	}))
}

func seedOrder(t *testing.T, s *fakeStore, customerID string, status models.OrderStatus, dspID *string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderRef:   "ref-" + customerID,
		CustomerID: customerID,
		TotalCents: 4000,
		Payment:    models.PaymentDetails{AmountCents: 4000, Status: models.PaymentStatusCompleted},
		Status:     status,
		DspID:      dspID,
	}
	require.NoError(t, s.Orders().Create(context.Background(), order))
	return order
}

func newFlow(s *fakeStore) (*OrderFlowService, *eventRecorder) {
	events := &eventRecorder{}
	return NewOrderFlowService(s, events, zap.NewNop()), events
}

func flowFixture(t *testing.T) (*fakeStore, *OrderFlowService, *eventRecorder) {
	s := newFakeStore()
	seedUser(t, s, "cust-1", models.RoleCustomer)
	seedUser(t, s, "merchant-a", models.RoleMerchant)
	seedUser(t, s, "admin-1", models.RoleAdmin)
	seedUser(t, s, "dsp-1", models.RoleDSP)
	seedUser(t, s, "dsp-2", models.RoleDSP)
	svc, events := newFlow(s)
	return s, svc, events
}

func strptr(s string) *string { return &s }

func TestFullDeliveryFlow(t *testing.T) {
	s, svc, events := flowFixture(t)
	order := seedOrder(t, s, "cust-1", models.OrderStatusPending, nil)
	ctx := context.Background()

	customer := Actor{UserID: "cust-1", Role: models.RoleCustomer}
	merchant := Actor{UserID: "merchant-a", Role: models.RoleMerchant}
	courier := Actor{UserID: "dsp-1", Role: models.RoleDSP}

	got, err := svc.Confirm(ctx, order.ID, customer)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.True(t, got.MerchantNotified)
	// Payment status was already set at placement; confirm must not reset it.
	assert.Equal(t, models.PaymentStatusCompleted, got.Payment.Status)

	got, err = svc.AssignDsp(ctx, order.ID, merchant, "dsp-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDspAssigned, got.Status)
	require.NotNil(t, got.DspID)
	assert.Equal(t, "dsp-1", *got.DspID)

	got, err = svc.DspAccept(ctx, order.ID, courier)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDspAccepted, got.Status)

	got, err = svc.StartShipping(ctx, order.ID, courier)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOnShipping, got.Status)

	got, err = svc.MarkDelivered(ctx, order.ID, customer)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	// The total never moved and every step was broadcast.
	assert.Equal(t, int64(4000), got.TotalCents)
	assert.Len(t, events.updated, 5)
}

func TestRejectThenReassign(t *testing.T) {
	s, svc, _ := flowFixture(t)
	order := seedOrder(t, s, "cust-1", models.OrderStatusDspAssigned, strptr("dsp-1"))
	ctx := context.Background()

	got, err := svc.DspReject(ctx, order.ID, Actor{UserID: "dsp-1", Role: models.RoleDSP})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDspRejected, got.Status)

	got, err = svc.ReassignDsp(ctx, order.ID, Actor{UserID: "admin-1", Role: models.RoleAdmin}, "dsp-2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDspAssigned, got.Status)
	assert.Equal(t, "dsp-2", *got.DspID)

	// The replacement courier can pick it up from here.
	got, err = svc.DspAccept(ctx, order.ID, Actor{UserID: "dsp-2", Role: models.RoleDSP})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDspAccepted, got.Status)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	s, svc, _ := flowFixture(t)
	ctx := context.Background()

	customer := Actor{UserID: "cust-1", Role: models.RoleCustomer}
	merchant := Actor{UserID: "merchant-a", Role: models.RoleMerchant}
	courier := Actor{UserID: "dsp-1", Role: models.RoleDSP}

	cases := []struct {
		name   string
		status models.OrderStatus
		dsp    *string
		act    func(orderID uint) error
	}{
		{"confirm a confirmed order", models.OrderStatusConfirmed, nil, func(id uint) error {
			_, err := svc.Confirm(ctx, id, customer)
			return err
		}},
		{"confirm a delivered order", models.OrderStatusDelivered, nil, func(id uint) error {
			_, err := svc.Confirm(ctx, id, customer)
			return err
		}},
		{"assign before confirmation", models.OrderStatusPending, nil, func(id uint) error {
			_, err := svc.AssignDsp(ctx, id, merchant, "dsp-1")
			return err
		}},
		{"accept before assignment", models.OrderStatusConfirmed, nil, func(id uint) error {
			_, err := svc.DspAccept(ctx, id, courier)
			return err
		}},
		{"ship before acceptance", models.OrderStatusDspAssigned, strptr("dsp-1"), func(id uint) error {
			_, err := svc.StartShipping(ctx, id, courier)
			return err
		}},
		{"deliver before shipping", models.OrderStatusDspAccepted, strptr("dsp-1"), func(id uint) error {
			_, err := svc.MarkDelivered(ctx, id, customer)
			return err
		}},
		{"reassign a non-rejected order", models.OrderStatusDspAssigned, strptr("dsp-1"), func(id uint) error {
			_, err := svc.ReassignDsp(ctx, id, merchant, "dsp-2")
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := seedOrder(t, s, "cust-1", tc.status, tc.dsp)
			err := tc.act(order.ID)
			var violation *StateViolationError
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, tc.status, violation.From)

			// The failed transition left the order untouched.
			got, _ := s.Orders().FindByID(ctx, order.ID)
			assert.Equal(t, tc.status, got.Status)
		})
	}
}

func TestRoleGates(t *testing.T) {
	s, svc, _ := flowFixture(t)
	ctx := context.Background()

	order := seedOrder(t, s, "cust-1", models.OrderStatusPending, nil)
	var forbidden *ForbiddenError

	// A courier cannot confirm.
	_, err := svc.Confirm(ctx, order.ID, Actor{UserID: "dsp-1", Role: models.RoleDSP})
	require.ErrorAs(t, err, &forbidden)

	// A customer cannot assign a courier.
	confirmed := seedOrder(t, s, "cust-1", models.OrderStatusConfirmed, nil)
	_, err = svc.AssignDsp(ctx, confirmed.ID, Actor{UserID: "cust-1", Role: models.RoleCustomer}, "dsp-1")
	require.ErrorAs(t, err, &forbidden)

	// A merchant cannot accept a delivery job.
	assigned := seedOrder(t, s, "cust-1", models.OrderStatusDspAssigned, strptr("dsp-1"))
	_, err = svc.DspAccept(ctx, assigned.ID, Actor{UserID: "merchant-a", Role: models.RoleMerchant})
	require.ErrorAs(t, err, &forbidden)

	// Only the assigned courier may act on the order.
	_, err = svc.DspAccept(ctx, assigned.ID, Actor{UserID: "dsp-2", Role: models.RoleDSP})
	require.ErrorAs(t, err, &forbidden)

	// Only the order's own customer may confirm or close it.
	seedUser(t, s, "cust-2", models.RoleCustomer)
	_, err = svc.Confirm(ctx, order.ID, Actor{UserID: "cust-2", Role: models.RoleCustomer})
	require.ErrorAs(t, err, &forbidden)
}

func TestAssignDspValidatesCourier(t *testing.T) {
	s, svc, _ := flowFixture(t)
	ctx := context.Background()
	order := seedOrder(t, s, "cust-1", models.OrderStatusConfirmed, nil)
	admin := Actor{UserID: "admin-1", Role: models.RoleAdmin}

	_, err := svc.AssignDsp(ctx, order.ID, admin, "")
	var v *ValidationError
	require.ErrorAs(t, err, &v)

	_, err = svc.AssignDsp(ctx, order.ID, admin, "nobody")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	// Assigning a non-courier user is rejected.
	_, err = svc.AssignDsp(ctx, order.ID, admin, "merchant-a")
	require.ErrorAs(t, err, &v)

	// The failed attempts left the order unassigned.
	got, _ := s.Orders().FindByID(ctx, order.ID)
	assert.Nil(t, got.DspID)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
}

func TestTransitionOnMissingOrder(t *testing.T) {
	_, svc, _ := flowFixture(t)

	_, err := svc.Confirm(context.Background(), 404, Actor{UserID: "cust-1", Role: models.RoleCustomer})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Resource)
}

func TestConfirmDefaultsPaymentStatus(t *testing.T) {
	s, svc, _ := flowFixture(t)
	order := seedOrder(t, s, "cust-1", models.OrderStatusPending, nil)

	// Simulate a legacy order with no payment status recorded.
	raw, _ := s.Orders().FindByID(context.Background(), order.ID)
	raw.Payment.Status = ""
	require.NoError(t, s.Orders().Save(context.Background(), raw))

	got, err := svc.Confirm(context.Background(), order.ID, Actor{UserID: "cust-1", Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, got.Payment.Status)
}
