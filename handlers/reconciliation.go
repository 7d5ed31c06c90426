package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hogarapp/gastos-api/models"
	"github.com/hogarapp/gastos-api/services"
)

type ReconciliationHandler struct {
	Reconciler *services.ReconcilerService
}

func NewReconciliationHandler(reconciler *services.ReconcilerService) *ReconciliationHandler {
	return &ReconciliationHandler{Reconciler: reconciler}
}

// RunReconciliation classifies the month's provisional entries against the
// imported batch without mutating anything. The frontend opens the review
// screen when total_manual > 0.
func (h *ReconciliationHandler) RunReconciliation(c *gin.Context) {
	month := c.Param("month")

	summary, err := h.Reconciler.Classify(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ApplyDefaults runs classification and applies the default decision for
// every tier in one pass: merge autos, merge suggested pairings (first wins
// on an ambiguous imported record), annotate-and-keep the unmatched.
func (h *ReconciliationHandler) ApplyDefaults(c *gin.Context) {
	month := c.Param("month")

	summary, err := h.Reconciler.Run(c.Request.Context(), month)
	if err != nil {
		// Partial progress is already committed; the caller re-runs safely.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"partial": summary != nil,
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Resolve applies a reviewed decision list.
func (h *ReconciliationHandler) Resolve(c *gin.Context) {
	var req models.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied, err := h.Reconciler.Resolve(c.Request.Context(), req.Items)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidDecision) ||
			errors.Is(err, services.ErrNotProvisional) ||
			errors.Is(err, services.ErrNotImported) ||
			errors.Is(err, services.ErrAlreadyMerged) ||
			errors.Is(err, services.ErrTransactionNotFound) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error(), "applied": applied})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}
