package productControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/middleware"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
)

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"` // minor units
	Stock       int    `json:"stock_quantity" binding:"min=0"`
}

// CreateProduct registers a product under the calling merchant's store.
func CreateProduct(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)

		merchant, err := store.Merchants().FindByUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusForbidden, gin.H{"error": "No merchant profile for this user"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load merchant"})
			return
		}

		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		product := models.Product{
			MerchantID:  merchant.ID,
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.Price,
			Stock:       req.Stock,
		}
		if err := store.Products().Create(c.Request.Context(), &product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func GetProduct(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("productID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productID must be numeric"})
			return
		}
		product, err := store.Products().FindByID(c.Request.Context(), uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GetMerchantProducts lists a store's catalog.
func GetMerchantProducts(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantID, err := strconv.ParseUint(c.Param("merchantID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "merchantID must be numeric"})
			return
		}
		products, err := store.Products().FindByMerchant(c.Request.Context(), uint(merchantID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
