package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/cart"
	productControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/product"
	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

func SetupCartRoutes(r *gin.Engine, deps Deps) {
	cart := r.Group("/user/cart")
	cart.Use(middleware.ValidateToken, middleware.RequireRoles(models.RoleCustomer))
	{
		cart.GET("/", cartControllers.GetCart(deps.Store))
		cart.POST("/", cartControllers.AddCartItem(deps.Store))
		cart.DELETE("/:productID", cartControllers.DeleteCartItem(deps.Store))
	}
}

func SetupProductRoutes(r *gin.Engine, deps Deps) {
	products := r.Group("/products")

	products.GET("/:productID", productControllers.GetProduct(deps.Store))
	products.GET("/merchant/:merchantID", productControllers.GetMerchantProducts(deps.Store))

	products.POST("/",
		middleware.ValidateToken,
		middleware.RequireRoles(models.RoleMerchant),
		productControllers.CreateProduct(deps.Store))
}
