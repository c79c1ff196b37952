package routes

import (
	"github.com/gin-gonic/gin"

	adminControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/admin"
	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
)

func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateAPIKey)
	{
		admin.GET("/approvals", adminControllers.ListPendingApprovals(deps.Store))
		admin.POST("/approvals/approve", adminControllers.ApproveUser(deps.Store, deps.Ledger))
		admin.POST("/approvals/reject", adminControllers.RejectUser(deps.Store))
	}
}
