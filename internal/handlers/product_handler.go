package handlers

import (
	"net/http"

	"go-pos-ledger/internal/ledger"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// --- GET: List the tenant's products ---
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.ledger.ListProducts(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	okList(c, products)
}

// --- GET: One product ---
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ledger.GetProduct(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, product)
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var in ledger.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badBody(c, err)
		return
	}

	product, err := h.ledger.CreateProduct(c.Request.Context(), middleware.TenantID(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, product)
}

// --- PUT: Update name, price or stock ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	var patch ledger.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badBody(c, err)
		return
	}

	product, err := h.ledger.UpdateProduct(c.Request.Context(), middleware.TenantID(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully", "data": product})
}

// --- DELETE: Remove a product ---
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.ledger.DeleteProduct(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully", "data": gin.H{"id": id}})
}
