package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceOrder  = "order"
	SourceManual = "manual"
)

// SalesItem - one sold line, the unit of profit accounting.
// Rows derived from orders use the id "<orderID>-<itemID>".
type SalesItem struct {
	ID           string          `gorm:"primaryKey;size:80" json:"id"`
	Source       string          `gorm:"size:10;index" json:"source"`
	OrderID      string          `gorm:"size:32;index" json:"order_id,omitempty"`
	ItemID       string          `gorm:"size:32" json:"item_id,omitempty"`
	Date         string          `gorm:"size:10;index" json:"date"`
	Name         string          `gorm:"size:200" json:"name"`
	Quantity     decimal.Decimal `gorm:"type:decimal(14,3)" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(14,2)" json:"price_per_unit"`
	SalesAmount  decimal.Decimal `gorm:"type:decimal(14,2)" json:"sales_amount"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(14,2)" json:"cost_per_unit"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_cost"`
	Profit       decimal.Decimal `gorm:"type:decimal(14,2)" json:"profit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func DerivedSalesID(orderID, itemID string) string { return orderID + "-" + itemID }

// Recalculate keeps the derived money columns consistent with qty/price/cost.
func (s *SalesItem) Recalculate() {
	s.SalesAmount = s.Quantity.Mul(s.PricePerUnit)
	s.TotalCost = s.Quantity.Mul(s.CostPerUnit)
	s.Profit = s.SalesAmount.Sub(s.TotalCost)
}

func (s SalesItem) IsManual() bool { return s.Source == SourceManual }
