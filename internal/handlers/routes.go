package handlers

import (
	"net/http"
	"time"

	"go-optics-pos/internal/middleware"

	"github.com/gin-gonic/gin"
)

var timeNow = time.Now

// Register mounts the public routes and the token-guarded /api group.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Auth))
	{
		api.GET("/orders", h.ListOrders)
		api.POST("/orders", h.CreateOrder)
		api.POST("/orders/preview", h.PreviewOrder)
		api.GET("/orders/next-number", h.NextOrderNumber)
		api.GET("/orders/:id", h.GetOrder)
		api.PUT("/orders/:id", h.UpdateOrder)

		api.GET("/clients", h.ListClients)
		api.POST("/clients", h.CreateClient)
		api.GET("/clients/suggest", h.SuggestClients)
		api.GET("/clients/stats", h.ClientStats)
		api.PUT("/clients/:id", h.UpdateClient)
		api.DELETE("/clients/:id", h.DeleteClient)

		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.GET("/products/stats", h.ProductStats)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.GET("/costs", h.ListCosts)
		api.POST("/costs", h.CreateCost)
		api.GET("/costs/stats", h.CostStats)
		api.PUT("/costs/:id", h.UpdateCost)
		api.DELETE("/costs/:id", h.DeleteCost)

		api.GET("/sales", h.ListSales)
		api.POST("/sales", h.AddSale)
		api.POST("/sales/sync", h.SyncSales)
		api.GET("/sales/export.xlsx", h.ExportSales)
		api.PATCH("/sales/:id/cost", h.UpdateSaleCost)
		api.DELETE("/sales/:id", h.DeleteSale)

		api.GET("/expenses", h.ListExpenses)
		api.POST("/expenses", h.AddExpense)
		api.PUT("/expenses/:id", h.UpdateExpense)
		api.DELETE("/expenses/:id", h.DeleteExpense)

		api.GET("/transactions", h.ListTransactions)
		api.POST("/transactions", h.AddTransaction)
		api.PATCH("/transactions/:id/status", h.SetTransactionStatus)

		api.GET("/finance/rollup", h.FinanceRollup)
		api.GET("/finance/dashboard", h.FinanceDashboard)

		api.POST("/ask", h.AskAI)
	}
}
