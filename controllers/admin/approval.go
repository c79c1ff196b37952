package adminControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/controllers/respond"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
	"github.com/haileamlak-bekele/merchdelivery-api/services"
)

// ListPendingApprovals returns all merchants and couriers awaiting approval.
func ListPendingApprovals(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := store.Users().FindPendingApproval(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending approvals"})
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

// ApproveUser marks a merchant or courier as approved and provisions their
// payment account. Account creation is idempotent, so re-approving a user
// never duplicates the account.
func ApproveUser(store repository.Store, ledger *services.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		user, err := store.Users().FindByID(c.Request.Context(), req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		var accountType models.AccountType
		switch user.Role {
		case models.RoleMerchant:
			accountType = models.AccountTypeMerchant
		case models.RoleDSP:
			accountType = models.AccountTypeDSP
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only merchants and DSPs require approval"})
			return
		}

		user.Approved = true
		if err := store.Users().Save(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve user"})
			return
		}

		account, err := ledger.CreateAccount(c.Request.Context(), user.ID, accountType)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User approved", "account": account})
	}
}

// RejectUser removes a pending merchant or courier.
func RejectUser(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		if err := store.Users().Delete(c.Request.Context(), req.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User rejected"})
	}
}
