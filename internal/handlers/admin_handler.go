package handlers

import (
	"net/http"

	"go-pos-ledger/internal/account"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	tenant, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, tenant)
}

func (h *Handler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": res.AccessToken,
		"user":        res.Tenant,
	})
}

func (h *Handler) GetProfile(c *gin.Context) {
	tenant, err := h.accounts.Profile(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, tenant)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req account.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	tenant, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "data": tenant})
}
