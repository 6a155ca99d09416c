package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/middleware"
	"github.com/hallfair/shopcore/internal/retry"
	"github.com/hallfair/shopcore/internal/service"
)

// Handler holds all dependencies needed by the HTTP endpoints. It parses
// requests, calls the core services and shapes responses; authorization is
// the job of whatever sits in front of it.
type Handler struct {
	issuer    *service.PromoIssuer
	validator *service.PromoValidator
	redeemer  *service.PromoRedeemer
	alerts    *service.StockAlertManager
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Issuer    *service.PromoIssuer
	Validator *service.PromoValidator
	Redeemer  *service.PromoRedeemer
	Alerts    *service.StockAlertManager
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		issuer:    deps.Issuer,
		validator: deps.Validator,
		redeemer:  deps.Redeemer,
		alerts:    deps.Alerts,
	}
}

// Register wires middleware and all routes onto the router.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(middleware.Recover(), middleware.Logging())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/promos/validate", h.ValidatePromo)
	api.POST("/promos/redeem", h.RedeemPromo)
	api.POST("/promos/welcome", h.WelcomePromo)

	admin := api.Group("/admin")
	admin.POST("/promos", h.GeneratePromo)
	admin.GET("/promos/stats", h.PromoStats)
	admin.GET("/alerts", h.ListAlerts)
	admin.POST("/alerts", h.ReportStock)
	admin.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
	admin.GET("/alerts/summary", h.AlertSummary)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// respondError maps core errors onto HTTP statuses. Business rejections are
// client errors; retry exhaustion means the store is unhealthy.
func respondError(c *gin.Context, err error) {
	var exhausted *retry.ExhaustedError
	switch {
	case errors.Is(err, domain.ErrInvalidPromo):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPromoAlreadyUsed), errors.Is(err, domain.ErrPromoUsageExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCodeSpaceExhausted):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.As(err, &exhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
