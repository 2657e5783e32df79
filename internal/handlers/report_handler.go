package handlers

import (
	"net/http"

	"go-pos-ledger/internal/ledger"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/reports/sales ---
// Without startDate and endDate the report covers all of the tenant's sales.
func (h *Handler) GetSalesReport(c *gin.Context) {
	var r *ledger.DateRange
	start, end := c.Query("startDate"), c.Query("endDate")
	if start != "" || end != "" {
		parsed, err := ledger.ParseDateRange(start, end)
		if err != nil {
			h.respondError(c, err)
			return
		}
		r = &parsed
	}

	report, err := h.ledger.SalesSummary(c.Request.Context(), middleware.TenantID(c), r)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}
