package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/ratelimit"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"
)

// Services groups what the handler needs. Exports and LoginLimiter are
// optional; their routes and middleware are skipped when nil.
type Services struct {
	Users        service.UserService
	Tokens       *auth.TokenService
	Guard        *auth.Guard
	Categories   service.CategoryService
	Ledger       service.LedgerService
	Summaries    service.SummaryService
	Exports      service.ExportService
	LoginLimiter ratelimit.Limiter
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	Services
	logger logrus.FieldLogger
}

func NewHandler(svc Services, logger logrus.FieldLogger) *Handler {
	return &Handler{Services: svc, logger: logger}
}

// NewRouter builds the engine. Only proxies in trustedProxies may set the
// client IP through X-Forwarded-For; with none, the peer address is used.
func NewRouter(h *Handler, trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	h.RegisterRoutes(router)
	return router, nil
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID(), h.requestLogger(), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.loginRateLimit(), h.login)
	}

	authed := api.Group("", h.authRequired())
	{
		authed.GET("/auth/me", h.me)

		authed.POST("/categories", h.createCategory)
		authed.GET("/categories", h.listCategories)
		authed.DELETE("/categories/:id", h.deleteCategory)

		authed.POST("/transactions", h.createTransaction)
		authed.GET("/transactions", h.listTransactions)
		authed.GET("/transactions/:id", h.getTransaction)
		authed.PATCH("/transactions/:id", h.updateTransaction)
		authed.DELETE("/transactions/:id", h.deleteTransaction)

		authed.GET("/summary", h.summary)
		authed.GET("/summary/monthly", h.monthlySummary)

		if h.Exports != nil {
			authed.POST("/exports", h.createExport)
			authed.GET("/exports", h.listExports)
			authed.DELETE("/exports", h.purgeExports)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const unauthenticatedDetail = "could not validate credentials"

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// respondError maps service errors onto status codes. Unexpected errors are
// attached to the context for the request logger and never echoed back.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		unauthorized(c, unauthenticatedDetail)
	case errors.Is(err, service.ErrInvalidCredentials):
		unauthorized(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUserAlreadyExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrStoreUnavailable):
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
