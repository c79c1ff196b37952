package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
)

// OrderEvents receives order lifecycle notifications after a successful
// commit. The websocket hub implements it; tests plug in a recorder.
type OrderEvents interface {
	OrderPlaced(order models.Order)
	OrderUpdated(order models.Order)
}

// CheckoutService turns a customer's cart into an order: price and stock
// verification, atomic stock decrement, order creation, one ledger credit
// per merchant, cart clearing. The whole sequence runs inside a single
// store transaction, so a failure at any step leaves no residue.
type CheckoutService struct {
	store  repository.Store
	events OrderEvents
	log    *zap.Logger
}

func NewCheckoutService(store repository.Store, events OrderEvents, log *zap.Logger) *CheckoutService {
	return &CheckoutService{store: store, events: events, log: log}
}

type PlaceOrderInput struct {
	CustomerID       string
	DeliveryLocation models.Location
	// DeclaredCents is the total the client claims to have paid; it must
	// exactly equal the computed total.
	DeclaredCents int64
}

func (s *CheckoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if in.CustomerID == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "must not be empty"}
	}
	if in.DeliveryLocation.IsZero() {
		return nil, &ValidationError{Field: "delivery_location", Message: "must not be empty"}
	}

	var order *models.Order
	err := s.store.Atomically(ctx, func(st repository.Store) error {
		cart, err := st.Carts().FindByCustomer(ctx, in.CustomerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		// First pass: lock every product row and compute the total from
		// current prices. No writes happen until every check has passed.
		type line struct {
			product *models.Product
			qty     int
		}
		lines := make([]line, 0, len(cart.Items))
		var total int64
		for _, item := range cart.Items {
			product, err := st.Products().FindByIDForUpdate(ctx, item.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "product", ID: fmt.Sprint(item.ProductID)}
			}
			if err != nil {
				return err
			}
			total += product.PriceCents * int64(item.Quantity)
			lines = append(lines, line{product: product, qty: item.Quantity})
		}

		// The declared payment must exactly equal the computed total.
		if total != in.DeclaredCents {
			return &PriceMismatchError{DeclaredCents: in.DeclaredCents, TotalCents: total}
		}

		// Second pass: verify every line is fulfillable before any
		// decrement, so a failing line never leaves a partial decrement.
		for _, l := range lines {
			if l.product.Stock < l.qty {
				return &InsufficientStockError{
					ProductID:   l.product.ID,
					ProductName: l.product.Name,
					Requested:   l.qty,
					Available:   l.product.Stock,
				}
			}
		}

		// Third pass: decrement. The rows are locked, but the floor on
		// the decrement still backstops any line that raced us.
		for _, l := range lines {
			ok, err := st.Products().DecrementStock(ctx, l.product.ID, l.qty)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{
					ProductID:   l.product.ID,
					ProductName: l.product.Name,
					Requested:   l.qty,
					Available:   l.product.Stock,
				}
			}
		}

		// Snapshot merchant info into each order item.
		merchants := make(map[uint]*models.Merchant)
		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			merchant, ok := merchants[l.product.MerchantID]
			if !ok {
				merchant, err = st.Merchants().FindByID(ctx, l.product.MerchantID)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "merchant", ID: fmt.Sprint(l.product.MerchantID)}
				}
				if err != nil {
					return err
				}
				merchants[l.product.MerchantID] = merchant
			}
			items = append(items, models.OrderItem{
				ProductID:        l.product.ID,
				ProductName:      l.product.Name,
				PriceCents:       l.product.PriceCents,
				Quantity:         l.qty,
				MerchantID:       merchant.ID,
				StoreName:        merchant.StoreName,
				MerchantLocation: merchant.Location,
			})
		}

		order = &models.Order{
			OrderRef:         generateOrderRef(),
			CustomerID:       in.CustomerID,
			Items:            items,
			TotalCents:       total,
			DeliveryLocation: in.DeliveryLocation,
			Payment: models.PaymentDetails{
				AmountCents: total,
				Status:      models.PaymentStatusCompleted,
			},
			Status: models.OrderStatusPending,
		}
		if err := st.Orders().Create(ctx, order); err != nil {
			return err
		}

		// One credit per merchant for that merchant's share of the order.
		perMerchant := make(map[uint]int64)
		for _, item := range order.Items {
			perMerchant[item.MerchantID] += item.LineTotal()
		}
		merchantIDs := make([]uint, 0, len(perMerchant))
		for id := range perMerchant {
			merchantIDs = append(merchantIDs, id)
		}
		sort.Slice(merchantIDs, func(i, j int) bool { return merchantIDs[i] < merchantIDs[j] })

		for _, merchantID := range merchantIDs {
			merchant := merchants[merchantID]
			account, err := ensureAccount(ctx, st, merchant.UserID, models.AccountTypeMerchant)
			if err != nil {
				return err
			}
			if _, err := postTransaction(ctx, st, TransactionInput{
				AccountID:      account.ID,
				AmountCents:    perMerchant[merchantID],
				Type:           models.TransactionCredit,
				Reason:         "Order Payment",
				From:           in.CustomerID,
				To:             merchant.UserID,
				Reference:      fmt.Sprint(order.ID),
				ReferenceModel: "Order",
			}); err != nil {
				return err
			}
		}

		return st.Carts().ClearItems(ctx, cart.CartID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("order_ref", order.OrderRef),
		zap.String("customer_id", order.CustomerID),
		zap.Int64("total", order.TotalCents))
	if s.events != nil {
		s.events.OrderPlaced(*order)
	}
	return order, nil
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
