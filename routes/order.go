package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/order"
	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders")

	// websocket endpoint for real-time order updates
	orders.GET("/ws", deps.Hub.Handler)

	// Admin view of every order
	orders.GET("/", middleware.ValidateAPIKey, orderControllers.GetAllOrdersHandler(deps.Store))

	authed := orders.Group("")
	authed.Use(middleware.ValidateToken)
	{
		// Checkout; an Idempotency-Key header makes retries safe
		authed.POST("/place",
			middleware.RequireRoles(models.RoleCustomer),
			middleware.Idempotency(deps.Redis),
			orderControllers.PlaceOrderHandler(deps.Checkout))

		authed.GET("/user/:userID", orderControllers.GetUserOrdersHandler(deps.Store))
		authed.GET("/assigned", middleware.RequireRoles(models.RoleDSP), orderControllers.GetDspOrdersHandler(deps.Store))
		authed.GET("/:orderID", orderControllers.GetOrderByIDHandler(deps.Store))

		// Status transitions; each one re-checks role and state inside
		// the order flow service.
		authed.PUT("/:orderID/confirm", orderControllers.ConfirmHandler(deps.Flow))
		authed.PUT("/:orderID/assign-dsp", orderControllers.AssignDspHandler(deps.Flow))
		authed.PUT("/:orderID/reassign-dsp", orderControllers.ReassignDspHandler(deps.Flow))
		authed.PUT("/:orderID/accept", orderControllers.DspAcceptHandler(deps.Flow))
		authed.PUT("/:orderID/reject", orderControllers.DspRejectHandler(deps.Flow))
		authed.PUT("/:orderID/shipping", orderControllers.StartShippingHandler(deps.Flow))
		authed.PUT("/:orderID/delivered", orderControllers.MarkDeliveredHandler(deps.Flow))
	}
}
