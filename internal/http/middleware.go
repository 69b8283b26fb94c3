package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	identityKey     = "identity"
)

// requestID keeps an incoming X-Request-ID or assigns a fresh one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Header(requestIDHeader, reqID)

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := h.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": c.GetString(requestIDKey),
		})
		if id, ok := identityFrom(c); ok {
			entry = entry.WithField("user_id", id.UserID)
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.WithField("error", c.Errors.String()).Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// authRequired resolves the bearer token into an identity. Every auth failure
// gets the same 401 body.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := h.Guard.Authorize(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				unauthorized(c, unauthenticatedDetail)
				return
			}
			h.respondError(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// mustIdentity is only used behind authRequired.
func mustIdentity(c *gin.Context) domain.Identity {
	id, _ := identityFrom(c)
	return id
}

// loginRateLimit throttles login attempts per client IP. Redis failures let
// the request through.
func (h *Handler) loginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.LoginLimiter == nil {
			c.Next()
			return
		}
		allowed, err := h.LoginLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			h.logger.WithError(err).Warn("login rate limiter unavailable")
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}
