package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go-optics-pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CostRequest struct {
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

func (h *Handler) ledgerRange(c *gin.Context) (services.DateRange, bool) {
	r, err := h.Ledger.Range(c.Query("period"), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return r, false
	}
	return r, true
}

// --- GET: /api/sales?period=&start=&end= ---
func (h *Handler) ListSales(c *gin.Context) {
	r, ok := h.ledgerRange(c)
	if !ok {
		return
	}
	view, err := h.Ledger.List(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- PATCH: /api/sales/:id/cost ---
func (h *Handler) UpdateSaleCost(c *gin.Context) {
	var in CostRequest
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.Ledger.UpdateCost(c.Request.Context(), c.Param("id"), in.CostPerUnit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) AddSale(c *gin.Context) {
	var in services.ManualSaleInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.Ledger.AddManual(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) DeleteSale(c *gin.Context) {
	if err := h.Ledger.DeleteManual(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sales row deleted"})
}

// --- POST: /api/sales/sync ---
func (h *Handler) SyncSales(c *gin.Context) {
	res, err := h.Ledger.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- GET: /api/sales/export.xlsx ---
func (h *Handler) ExportSales(c *gin.Context) {
	r, ok := h.ledgerRange(c)
	if !ok {
		return
	}
	// Render into memory first so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := h.Ledger.ExportXLSX(c.Request.Context(), r, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(r)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func exportName(r services.DateRange) string {
	switch {
	case r.From != "" && r.To != "":
		return fmt.Sprintf("sales_%s_%s.xlsx", r.From, r.To)
	case r.From != "":
		return fmt.Sprintf("sales_from_%s.xlsx", r.From)
	case r.To != "":
		return fmt.Sprintf("sales_until_%s.xlsx", r.To)
	}
	return "sales_all.xlsx"
}

// --- GET: /api/finance/rollup?period= ---
func (h *Handler) FinanceRollup(c *gin.Context) {
	r, ok := h.ledgerRange(c)
	if !ok {
		return
	}
	res, err := h.Finance.Rollup(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- GET: /api/finance/dashboard?period=&type= ---
func (h *Handler) FinanceDashboard(c *gin.Context) {
	res, err := h.Finance.Dashboard(c.Request.Context(), c.DefaultQuery("period", "month"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
