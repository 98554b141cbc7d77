package database

import (
	"go-optics-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesReportResult is the ledger rollup for a date range
type SalesReportResult struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	LineCount    int64           `json:"line_count"`
}

// GetSalesReport totals the sales ledger between two YYYY-MM-DD dates, inclusive.
// Money is summed with decimal in Go: SQLite keeps decimal columns as REAL, so
// SUM() there would add binary floats.
func GetSalesReport(db *gorm.DB, start, end string) (*SalesReportResult, error) {
	var rows []models.SalesItem
	err := db.Model(&models.SalesItem{}).
		Select("sales_amount", "total_cost", "profit").
		Where("date BETWEEN ? AND ?", start, end).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	res := &SalesReportResult{
		TotalRevenue: decimal.Zero,
		TotalCost:    decimal.Zero,
		TotalProfit:  decimal.Zero,
		LineCount:    int64(len(rows)),
	}
	for _, r := range rows {
		res.TotalRevenue = res.TotalRevenue.Add(r.SalesAmount)
		res.TotalCost = res.TotalCost.Add(r.TotalCost)
		res.TotalProfit = res.TotalProfit.Add(r.Profit)
	}
	return res, nil
}
