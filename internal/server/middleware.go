package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	"github.com/stayhive/stayhive/internal/requestmeta"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	headerActorType = "X-Actor-Type"
	headerActorID   = "X-Actor-ID"
)

// RequestMetadata propagates request id, client info, and actor identity
// into the request context so audit entries can attribute mutations.
func RequestMetadata() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestmeta.WithRequestID(ctx, requestID)
		ctx = requestmeta.WithClientInfo(ctx, c.ClientIP(), c.Request.UserAgent())

		actorType := strings.TrimSpace(c.GetHeader(headerActorType))
		if actorType == "" {
			actorType = string(auditdomain.ActorTypeGuest)
		}
		ctx = requestmeta.WithActor(ctx, actorType, strings.TrimSpace(c.GetHeader(headerActorID)))

		c.Header(headerRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogging writes one structured line per request.
func RequestLogging(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestmeta.RequestIDFromContext(c.Request.Context())),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.Error(lastErr.Err))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// SearchRateLimit throttles per client IP through the shared token bucket.
// Redis failures fail open.
func (s *Server) SearchRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.searchLimiter == nil {
			c.Next()
			return
		}

		res, err := s.searchLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("search rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", res.RetryAfter.Round(time.Second).String())
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
