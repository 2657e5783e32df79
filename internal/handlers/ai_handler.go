package handlers

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		h.respondError(c, apperr.Validationf("Message is required"))
		return
	}

	reply, err := h.assistant.Ask(c.Request.Context(), middleware.TenantID(c), req.Message)
	if err != nil {
		h.respondError(c, apperr.Server(err, "Assistant request failed"))
		return
	}
	ok(c, http.StatusOK, gin.H{"reply": reply})
}
