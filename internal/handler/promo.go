package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/service"
)

type generatePromoRequest struct {
	DiscountType   string          `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue  decimal.Decimal `json:"discount_value" binding:"required"`
	ExpirationDays int             `json:"expiration_days"`
	UsageLimit     int             `json:"usage_limit"`
	Prefix         string          `json:"prefix"`
}

type redeemPromoRequest struct {
	Code     string           `json:"code" binding:"required"`
	UserID   int64            `json:"user_id" binding:"required"`
	OrderID  *uuid.UUID       `json:"order_id"`
	Subtotal *decimal.Decimal `json:"subtotal"`
}

type promoResponse struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	UsageLimit    int             `json:"usage_limit"`
	UsedCount     int             `json:"used_count"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	IsActive      bool            `json:"is_active"`
}

func toPromoResponse(p *domain.PromoCode) promoResponse {
	return promoResponse{
		ID:            p.ID,
		Code:          p.Code,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue,
		UsageLimit:    p.UsageLimit,
		UsedCount:     p.UsedCount,
		ExpiresAt:     p.ExpiresAt,
		IsActive:      p.IsActive,
	}
}

func (h *Handler) GeneratePromo(c *gin.Context) {
	var req generatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promo, err := h.issuer.Generate(c.Request.Context(), service.GenerateParams{
		DiscountType:   domain.DiscountType(req.DiscountType),
		DiscountValue:  req.DiscountValue,
		ExpirationDays: req.ExpirationDays,
		UsageLimit:     req.UsageLimit,
		Prefix:         req.Prefix,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPromoResponse(promo))
}

func (h *Handler) ValidatePromo(c *gin.Context) {
	code := c.Query("code")

	var userID *int64
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		userID = &id
	}

	var subtotal *decimal.Decimal
	if raw := c.Query("subtotal"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subtotal"})
			return
		}
		subtotal = &d
	}

	v, err := h.validator.Validate(c.Request.Context(), code, userID, subtotal)
	if err != nil {
		respondError(c, err)
		return
	}
	if !v.Valid {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": v.Reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":           true,
		"promo_code":      toPromoResponse(v.PromoCode),
		"discount_amount": v.DiscountAmount,
	})
}

func (h *Handler) RedeemPromo(c *gin.Context) {
	var req redeemPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := h.redeemer.Redeem(c.Request.Context(), req.Code, req.UserID, req.OrderID, req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"promo_code":      toPromoResponse(redemption.PromoCode),
		"usage_id":        redemption.UsageID,
		"discount_amount": redemption.DiscountAmount,
	})
}

func (h *Handler) WelcomePromo(c *gin.Context) {
	promo, err := h.issuer.WelcomePromo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPromoResponse(promo))
}

func (h *Handler) PromoStats(c *gin.Context) {
	stats, err := h.issuer.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_codes":    stats.TotalCodes,
		"active_codes":   stats.ActiveCodes,
		"redemptions":    stats.Redemptions,
		"total_discount": stats.TotalDiscount,
	})
}
