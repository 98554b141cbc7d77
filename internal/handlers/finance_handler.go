package handlers

import (
	"net/http"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/services"

	"github.com/gin-gonic/gin"
)

type StatusRequest struct {
	Status models.TransactionStatus `json:"status" binding:"required,oneof=completed pending cancelled"`
}

func (h *Handler) ListExpenses(c *gin.Context) {
	sheet, err := h.Finance.ListExpenses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *Handler) AddExpense(c *gin.Context) {
	var in services.ExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.Finance.AddExpense(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateExpense(c *gin.Context) {
	var in services.ExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.Finance.UpdateExpense(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// --- DELETE: /api/expenses/:id?confirm=true ---
func (h *Handler) DeleteExpense(c *gin.Context) {
	if err := h.Finance.DeleteExpense(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

// --- GET: /api/transactions?period=&type= ---
func (h *Handler) ListTransactions(c *gin.Context) {
	r, err := services.TrailingRange(c.Query("period"), timeNow())
	if err != nil {
		respondError(c, err)
		return
	}
	txs, err := h.Finance.ListTransactions(c.Request.Context(), r, c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) AddTransaction(c *gin.Context) {
	var in services.TransactionInput
	if !bindJSON(c, &in) {
		return
	}
	tx, err := h.Finance.AddTransaction(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// --- PATCH: /api/transactions/:id/status ---
// The log is append-only; a wrong entry is cancelled, not deleted.
func (h *Handler) SetTransactionStatus(c *gin.Context) {
	var in StatusRequest
	if !bindJSON(c, &in) {
		return
	}
	tx, err := h.Finance.SetTransactionStatus(c.Request.Context(), c.Param("id"), in.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
