package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haileamlak-bekele/merchdelivery-api/logger"
	"github.com/haileamlak-bekele/merchdelivery-api/services"
)

// Error maps the service error taxonomy onto HTTP statuses: input the
// caller can fix is 400-class, everything else is an opaque 500.
func Error(c *gin.Context, err error) {
	var (
		validation  *services.ValidationError
		mismatch    *services.PriceMismatchError
		stock       *services.InsufficientStockError
		notFound    *services.NotFoundError
		state       *services.StateViolationError
		forbidden   *services.ForbiddenError
		invalidType *services.InvalidTransactionTypeError
	)

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validation), errors.As(err, &invalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &state):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.Log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
