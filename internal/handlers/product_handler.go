package handlers

import (
	"net/http"

	"go-optics-pos/internal/services"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/products?q=&category= ---
func (h *Handler) ListProducts(c *gin.Context) {
	rows, err := h.Products.List(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": p})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (h *Handler) ProductStats(c *gin.Context) {
	s, err := h.Products.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// --- Cost registry ---

func (h *Handler) ListCosts(c *gin.Context) {
	rows, err := h.Costs.List(c.Request.Context(), c.Query("q"), c.Query("category"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) CreateCost(c *gin.Context) {
	var in services.CostInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.Costs.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateCost(c *gin.Context) {
	var in services.CostInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.Costs.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteCost(c *gin.Context) {
	if err := h.Costs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cost item deleted"})
}

func (h *Handler) CostStats(c *gin.Context) {
	s, err := h.Costs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
