package paymentControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haileamlak-bekele/merchdelivery-api/controllers/respond"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/services"
)

type CreateAccountRequest struct {
	UserID      string             `json:"user_id" binding:"required"`
	AccountType models.AccountType `json:"account_type" binding:"required"`
}

type PostTransactionRequest struct {
	AccountID      uint                   `json:"account_id" binding:"required"`
	Amount         int64                  `json:"amount"`
	Type           models.TransactionType `json:"type" binding:"required"`
	Reason         string                 `json:"reason"`
	From           string                 `json:"from"`
	To             string                 `json:"to"`
	Reference      string                 `json:"reference"`
	ReferenceModel string                 `json:"reference_model"`
}

// GetAccountByUserHandler resolves a user's payment account.
func GetAccountByUserHandler(ledger *services.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
			return
		}
		account, err := ledger.GetAccountByUser(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// GetTransactionsHandler lists an account's ledger entries, most recent first.
func GetTransactionsHandler(ledger *services.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := strconv.ParseUint(c.Param("accountID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "accountID must be numeric"})
			return
		}
		txns, err := ledger.ListTransactions(c.Request.Context(), uint(accountID))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, txns)
	}
}

// CreateAccountHandler provisions a payment account; calling it again for
// the same (user, type) returns the existing account.
func CreateAccountHandler(ledger *services.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		account, err := ledger.CreateAccount(c.Request.Context(), req.UserID, req.AccountType)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// PostTransactionHandler posts a manual credit or debit (admin only).
func PostTransactionHandler(ledger *services.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		txn, err := ledger.PostTransaction(c.Request.Context(), services.TransactionInput{
			AccountID:      req.AccountID,
			AmountCents:    req.Amount,
			Type:           req.Type,
			Reason:         req.Reason,
			From:           req.From,
			To:             req.To,
			Reference:      req.Reference,
			ReferenceModel: req.ReferenceModel,
		})
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, txn)
	}
}
