package handlers

import (
	"fmt"
	"net/http"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the error body used by every route:
// {"title", "message", "stackTrace" (dev only)}.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	_ = c.Error(err)

	if kind == apperr.KindServer {
		logging.FromContext(c.Request.Context()).Error("request_failed", zap.Error(err))
	}

	body := gin.H{
		"title":   kind.Title(),
		"message": apperr.Message(err),
	}
	if h.dev {
		body["stackTrace"] = fmt.Sprintf("%+v", err)
	}
	c.AbortWithStatusJSON(kind.Status(), body)
}

func (h *Handler) badBody(c *gin.Context, err error) {
	h.respondError(c, &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid request body", Err: err})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func okList[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}
