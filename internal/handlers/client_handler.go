package handlers

import (
	"net/http"

	"go-optics-pos/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.Clients.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) CreateClient(c *gin.Context) {
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}
	client, err := h.Clients.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}
	client, err := h.Clients.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// --- DELETE: /api/clients/:id?confirm=true ---
func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.Clients.Delete(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}

// --- GET: /api/clients/suggest?name=&phone= ---
// Feeds the order form autocomplete.
func (h *Handler) SuggestClients(c *gin.Context) {
	s, err := h.Clients.Suggest(c.Request.Context(), c.Query("name"), c.Query("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ClientStats(c *gin.Context) {
	s, err := h.Clients.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
