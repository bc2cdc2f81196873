package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orderbridge/backend/internal/domain/shared"
	"github.com/orderbridge/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// MaxIdempotencyKeyLength caps Idempotency-Key header values.
const MaxIdempotencyKeyLength = 255

// Idempotency rejects a replayed mutating request while the first one holds
// its key. Requests without an Idempotency-Key header pass through.
//
// Keys are scoped by method and route. A request that ends in a 5xx gives its
// key back so the client can retry. Store failures let the request through.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig, logger *zap.Logger) gin.HandlerFunc {
	if store == nil || !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		scoped := c.Request.Method + " " + getRoutePattern(c) + " " + key
		ctx := c.Request.Context()

		claimed, err := store.Claim(ctx, scoped, cfg.TTL)
		if err != nil {
			logger.Warn("Idempotency store unavailable, serving request without replay protection",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeConflict, "A request with this Idempotency-Key was already received", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := store.Release(ctx, scoped); err != nil {
				logger.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
