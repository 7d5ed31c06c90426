package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hogarapp/gastos-api/models"
	"github.com/hogarapp/gastos-api/services"
)

type TransactionHandler struct {
	Transactions *services.TransactionService
	WS           *WSHandler
}

func NewTransactionHandler(transactions *services.TransactionService, ws *WSHandler) *TransactionHandler {
	return &TransactionHandler{Transactions: transactions, WS: ws}
}

// CreateTransaction records a manual (provisional) expense entry.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.Transactions.CreateManual(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInstallmentFieldsMismatch) || errors.Is(err, models.ErrInstallmentOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}

	c.JSON(http.StatusCreated, t)
}

// ListTransactions returns the transactions of one accounting month, with
// optional status/origin filters.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month query parameter is required (YYYY-MM)"})
		return
	}

	txs, err := h.Transactions.ListByMonth(c.Request.Context(), month, c.Query("status"), c.Query("origin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	c.JSON(http.StatusOK, txs)
}

// UpdateTransaction applies a partial edit.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.Transactions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.WS != nil {
		h.WS.Broadcast("transaction_updated", t.ID)
	}
	c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	err := h.Transactions.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ImportTransactions loads a batch of statement rows (parsed upstream) as
// confirmed imported transactions for one month.
func (h *TransactionHandler) ImportTransactions(c *gin.Context) {
	var req models.ImportBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inserted, err := h.Transactions.ImportBatch(c.Request.Context(), req.Month, req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.WS != nil {
		h.WS.Broadcast("transactions_imported", req.Month)
	}
	c.JSON(http.StatusCreated, gin.H{
		"month":    req.Month,
		"imported": len(inserted),
	})
}
