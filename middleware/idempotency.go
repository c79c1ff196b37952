package middleware

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/haileamlak-bekele/merchdelivery-api/logger"
)

const idempotencyTTL = 24 * time.Hour

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the cached response for a repeated Idempotency-Key,
// so a retried checkout never places a second order. Requests without the
// header pass through untouched.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" || rdb == nil {
			c.Next()
			return
		}
		cacheKey := "idempotency:" + key

		if raw, err := rdb.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(raw, &cached) == nil {
				logger.Log.Info("idempotency hit", zap.String("key", key))
				c.Header("X-Idempotency-Hit", "true")
				c.Data(cached.Status, "application/json", cached.Body)
				c.Abort()
				return
			}
		}

		w := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// Server faults are not cached; the client should retry those.
		status := w.Status()
		if status >= 500 {
			return
		}
		raw, err := json.Marshal(cachedResponse{Status: status, Body: w.buf.Bytes()})
		if err != nil {
			return
		}
		if err := rdb.SetNX(c.Request.Context(), cacheKey, raw, idempotencyTTL).Err(); err != nil {
			logger.Log.Error("failed to save idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}
