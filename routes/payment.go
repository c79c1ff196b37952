package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/payment"
	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, deps Deps) {
	payments := r.Group("/payments")

	authed := payments.Group("")
	authed.Use(middleware.ValidateToken)
	{
		authed.GET("/accounts/user/:userID", paymentControllers.GetAccountByUserHandler(deps.Ledger))
		authed.GET("/accounts/:accountID/transactions", paymentControllers.GetTransactionsHandler(deps.Ledger))
	}

	// Manual account provisioning and postings are an admin surface.
	admin := payments.Group("")
	admin.Use(middleware.ValidateAPIKey)
	{
		admin.POST("/accounts", paymentControllers.CreateAccountHandler(deps.Ledger))
		admin.POST("/transactions", paymentControllers.PostTransactionHandler(deps.Ledger))
	}
}
