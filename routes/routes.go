package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	orderControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/order"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
	"github.com/haileamlak-bekele/merchdelivery-api/services"
)

// Deps carries everything the route groups wire into their handlers.
type Deps struct {
	Store    repository.Store
	Checkout *services.CheckoutService
	Flow     *services.OrderFlowService
	Ledger   *services.LedgerService
	Hub      *orderControllers.EventHub
	Redis    *redis.Client // nil disables the idempotency cache
}

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	SetupOrderRoutes(r, deps)
	SetupPaymentRoutes(r, deps)
	SetupCartRoutes(r, deps)
	SetupProductRoutes(r, deps)
	SetupAdminRoutes(r, deps)
}
