package handlers

import (
	"net/http"

	"go-pos-ledger/internal/ledger"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// --- POST: Checkout ---
// Any total sent by the client is ignored; CheckoutRequest has no such field.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req ledger.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	view, err := h.ledger.CreateTransaction(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, view)
}

func (h *Handler) GetTransactions(c *gin.Context) {
	views, err := h.ledger.ListTransactions(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	okList(c, views)
}

// --- GET: /transactions/date-range?startDate=...&endDate=... ---
func (h *Handler) GetTransactionsByDateRange(c *gin.Context) {
	r, err := ledger.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	views, err := h.ledger.ListTransactionsInRange(c.Request.Context(), middleware.TenantID(c), r)
	if err != nil {
		h.respondError(c, err)
		return
	}
	okList(c, views)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	view, err := h.ledger.GetTransaction(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	var patch ledger.TransactionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badBody(c, err)
		return
	}

	view, err := h.ledger.UpdateTransaction(c.Request.Context(), middleware.TenantID(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.ledger.DeleteTransaction(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
