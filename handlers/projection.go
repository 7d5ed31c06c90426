package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hogarapp/gastos-api/models"
	"github.com/hogarapp/gastos-api/services"
)

type ProjectionHandler struct {
	Projections  *services.ProjectionService
	Installments *services.InstallmentService
}

func NewProjectionHandler(projections *services.ProjectionService, installments *services.InstallmentService) *ProjectionHandler {
	return &ProjectionHandler{Projections: projections, Installments: installments}
}

// GetObligations lists the active installment purchases reconstructed from
// history, largest first.
func (h *ProjectionHandler) GetObligations(c *gin.Context) {
	obligations, err := h.Installments.ActiveObligations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load obligations"})
		return
	}
	if obligations == nil {
		obligations = []models.InstallmentObligation{}
	}
	c.JSON(http.StatusOK, obligations)
}

// GetProjection returns the month-by-month projected obligations series.
func (h *ProjectionHandler) GetProjection(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month query parameter is required (YYYY-MM)"})
		return
	}
	horizon, err := strconv.Atoi(c.DefaultQuery("horizon", "12"))
	if err != nil || !services.ValidHorizon(horizon) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be one of 6, 12, 18, 24"})
		return
	}

	series, err := h.Projections.Project(c.Request.Context(), month, horizon)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, series)
}

// Simulate answers "can I afford this purchase in N cuotas?".
func (h *ProjectionHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Periods < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periods must be at least 1"})
		return
	}

	result, err := h.Projections.SimulatePurchase(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
