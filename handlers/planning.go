package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hogarapp/gastos-api/models"
	"github.com/hogarapp/gastos-api/services"
)

// PlanningHandler manages the projection inputs the grouper cannot derive
// from history: recurring fixed charges and planned future purchases.
type PlanningHandler struct {
	Projections *services.ProjectionService
}

func NewPlanningHandler(projections *services.ProjectionService) *PlanningHandler {
	return &PlanningHandler{Projections: projections}
}

func (h *PlanningHandler) ListRecurring(c *gin.Context) {
	charges, err := h.Projections.ListRecurring(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recurring charges"})
		return
	}
	if charges == nil {
		charges = []models.RecurringCharge{}
	}
	c.JSON(http.StatusOK, charges)
}

func (h *PlanningHandler) CreateRecurring(c *gin.Context) {
	var req models.RecurringChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	charge, err := h.Projections.CreateRecurring(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recurring charge"})
		return
	}
	c.JSON(http.StatusCreated, charge)
}

func (h *PlanningHandler) DeleteRecurring(c *gin.Context) {
	if err := h.Projections.DeleteRecurring(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recurring charge not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recurring charge"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *PlanningHandler) ListPlanned(c *gin.Context) {
	purchases, err := h.Projections.ListPlanned(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load planned purchases"})
		return
	}
	if purchases == nil {
		purchases = []models.PlannedPurchase{}
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *PlanningHandler) CreatePlanned(c *gin.Context) {
	var req models.PlannedPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.Projections.CreatePlanned(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *PlanningHandler) DeletePlanned(c *gin.Context) {
	if err := h.Projections.DeletePlanned(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Planned purchase not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete planned purchase"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
