package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hallfair/shopcore/internal/domain"
)

type reportStockRequest struct {
	ProductID    int64 `json:"product_id" binding:"required"`
	CurrentStock *int  `json:"current_stock" binding:"required"`
	Threshold    int   `json:"threshold"`
}

type acknowledgeRequest struct {
	AdminUserID int64 `json:"admin_user_id" binding:"required"`
}

type alertResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	Threshold    int    `json:"threshold"`
	Severity     string `json:"severity"`
	Acknowledged bool   `json:"acknowledged"`
	CreatedAt    string `json:"created_at"`
}

func toAlertResponse(a *domain.LowStockAlert) alertResponse {
	return alertResponse{
		ID:           a.ID,
		ProductID:    a.ProductID,
		Threshold:    a.Threshold,
		Severity:     string(a.Severity),
		Acknowledged: a.Acknowledged,
		CreatedAt:    a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ReportStock records a low-stock observation for a product.
func (h *Handler) ReportStock(c *gin.Context) {
	var req reportStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := h.alerts.CreateOrUpdate(c.Request.Context(), req.ProductID, *req.CurrentStock, req.Threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAlertResponse(alert))
}

func (h *Handler) ListAlerts(c *gin.Context) {
	acknowledged := c.Query("acknowledged") == "true"

	alerts, err := h.alerts.List(c.Request.Context(), acknowledged)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, gin.H{
			"alert":         toAlertResponse(&a.LowStockAlert),
			"product_name":  a.ProductName,
			"current_stock": a.CurrentStock,
		})
	}
	c.JSON(http.StatusOK, gin.H{"alerts": out})
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	alertID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.alerts.Acknowledge(c.Request.Context(), alertID, req.AdminUserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "acknowledged"})
}

func (h *Handler) AlertSummary(c *gin.Context) {
	summary, err := h.alerts.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"warning":      summary.Warning,
		"critical":     summary.Critical,
		"out_of_stock": summary.OutOfStock,
		"total":        summary.Total,
	})
}
