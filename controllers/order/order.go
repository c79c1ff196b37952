package orderControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/controllers/respond"
	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
	"github.com/haileamlak-bekele/merchdelivery-api/services"
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	DeliveryLocation models.Location `json:"delivery_location" binding:"required"`
	// PaymentPrice is the total the client claims, in minor units; it
	// must exactly match the computed cart total.
	PaymentPrice int64 `json:"payment_price" binding:"required"`
}

type AssignDspRequest struct {
	DspID string `json:"dsp_id" binding:"required"`
}

// -------- Helpers --------

func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: c.GetString(middleware.ContextUserID),
		Role:   c.MustGet(middleware.ContextRole).(models.Role),
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderID must be numeric"})
		return 0, false
	}
	return uint(id), true
}

// -------- Handlers --------

// PlaceOrderHandler checks out the caller's cart into a new order.
func PlaceOrderHandler(checkout *services.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := checkout.PlaceOrder(c.Request.Context(), services.PlaceOrderInput{
			CustomerID:       c.GetString(middleware.ContextUserID),
			DeliveryLocation: req.DeliveryLocation,
			DeclaredCents:    req.PaymentPrice,
		})
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// transitionHandler wraps the no-payload transitions; they differ only in
// which service method runs.
func transitionHandler(apply func(c *gin.Context, orderID uint, actor services.Actor) (*models.Order, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := apply(c, orderID, actorFrom(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func ConfirmHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return transitionHandler(func(c *gin.Context, id uint, actor services.Actor) (*models.Order, error) {
		return flow.Confirm(c.Request.Context(), id, actor)
	})
}

func DspAcceptHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return transitionHandler(func(c *gin.Context, id uint, actor services.Actor) (*models.Order, error) {
		return flow.DspAccept(c.Request.Context(), id, actor)
	})
}

func DspRejectHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return transitionHandler(func(c *gin.Context, id uint, actor services.Actor) (*models.Order, error) {
		return flow.DspReject(c.Request.Context(), id, actor)
	})
}

func StartShippingHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return transitionHandler(func(c *gin.Context, id uint, actor services.Actor) (*models.Order, error) {
		return flow.StartShipping(c.Request.Context(), id, actor)
	})
}

func MarkDeliveredHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return transitionHandler(func(c *gin.Context, id uint, actor services.Actor) (*models.Order, error) {
		return flow.MarkDelivered(c.Request.Context(), id, actor)
	})
}

func AssignDspHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return dspAssignmentHandler(flow.AssignDsp)
}

func ReassignDspHandler(flow *services.OrderFlowService) gin.HandlerFunc {
	return dspAssignmentHandler(flow.ReassignDsp)
}

func dspAssignmentHandler(apply func(ctx context.Context, orderID uint, actor services.Actor, dspID string) (*models.Order, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		var req AssignDspRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := apply(c.Request.Context(), orderID, actorFrom(c), req.DspID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// -------- Read handlers --------

func GetAllOrdersHandler(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := store.Orders().FindAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetUserOrdersHandler(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
			return
		}
		orders, err := store.Orders().FindByCustomer(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetDspOrdersHandler lists the orders currently assigned to the calling courier.
func GetDspOrdersHandler(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := store.Orders().FindByDsp(c.Request.Context(), c.GetString(middleware.ContextUserID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetOrderByIDHandler(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := store.Orders().FindByID(c.Request.Context(), orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
