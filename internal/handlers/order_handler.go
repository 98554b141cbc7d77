package handlers

import (
	"net/http"

	"go-optics-pos/internal/services"

	"github.com/gin-gonic/gin"
)

// --- POST: /api/orders ---
func (h *Handler) CreateOrder(c *gin.Context) {
	var in services.OrderInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// --- POST: /api/orders/preview ---
// Live total/debt while the form is being filled in. Nothing is stored.
func (h *Handler) PreviewOrder(c *gin.Context) {
	var in services.OrderInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Orders.Preview(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- GET: /api/orders?q= ---
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.Orders.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- PUT: /api/orders/:id ---
// Answers 409 with a reconciliation payload until the body carries reconcile=yes|no.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var in services.OrderUpdate
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Orders.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) NextOrderNumber(c *gin.Context) {
	n, err := h.Orders.NextOrderNumber(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_number": n})
}
