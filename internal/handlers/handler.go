package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"go-optics-pos/internal/ai"
	"go-optics-pos/internal/auth"
	"go-optics-pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handler exposes the shop services over HTTP. Agent is nil when no assistant key is configured.
type Handler struct {
	Orders   *services.OrderService
	Clients  *services.ClientService
	Products *services.ProductService
	Costs    *services.CostService
	Ledger   *services.LedgerService
	Finance  *services.FinanceService
	Auth     *auth.Authenticator
	Agent    *ai.Agent
}

// bindJSON decodes the body into dst. It writes the error response itself and
// reports whether the handler should go on.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": fields})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return false
	}
	return true
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	var rr *services.ReconciliationRequired
	switch {
	case errors.As(err, &rr):
		c.JSON(http.StatusConflict, gin.H{"error": rr.Error(), "reconciliation": rr})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateName), errors.Is(err, services.ErrStaleVersion):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConfirmationRequired):
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "Deletion must be confirmed with ?confirm=true"})
	default:
		log.Printf("request %s %s failed (id %s): %v", c.Request.Method, c.FullPath(), c.GetString("requestID"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}
