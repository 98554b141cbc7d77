package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// 1. The assistant only exists when GEMINI_API_KEY is set
	if h.Agent == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
		return
	}

	// 2. Run the AI Agent
	response, err := h.Agent.Run(c.Request.Context(), req.Message)
	if err != nil {
		log.Printf("assistant failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant request failed"})
		return
	}

	// 3. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": response})
}
