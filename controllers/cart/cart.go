package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// AddCartItem adds a product to the caller's cart; adding a product that
// is already in the cart merges the quantities into one line.
func AddCartItem(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := c.GetString(middleware.ContextUserID)

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if _, err := store.Products().FindByID(c.Request.Context(), input.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}

		cart, err := store.Carts().FindOrCreateByCustomer(c.Request.Context(), customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}

		item, err := store.Carts().AddItem(c.Request.Context(), cart.CartID, input.ProductID, input.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// GetCart returns the caller's cart with its lines.
func GetCart(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := c.GetString(middleware.ContextUserID)
		cart, err := store.Carts().FindOrCreateByCustomer(c.Request.Context(), customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DeleteCartItem removes one product line from the caller's cart.
func DeleteCartItem(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := c.GetString(middleware.ContextUserID)

		productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productID must be numeric"})
			return
		}

		cart, err := store.Carts().FindByCustomer(c.Request.Context(), customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}

		if err := store.Carts().RemoveItem(c.Request.Context(), cart.CartID, uint(productID)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
	}
}
