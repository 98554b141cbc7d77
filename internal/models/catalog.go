package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	TypeFrame     ProductType = "frame"
	TypeLens      ProductType = "lens"
	TypeAccessory ProductType = "accessory"
	TypeService   ProductType = "service"
)

func (t ProductType) Valid() bool {
	switch t {
	case TypeFrame, TypeLens, TypeAccessory, TypeService:
		return true
	}
	return false
}

// Product - the catalog
type Product struct {
	ID          string          `gorm:"primaryKey;size:32" json:"id"`
	Name        string          `gorm:"size:200;index" json:"name"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Brand       string          `gorm:"size:100" json:"brand"`
	Model       string          `gorm:"size:100" json:"model"`
	Type        ProductType     `gorm:"size:20" json:"type"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2)" json:"price"`
	Cost        decimal.Decimal `gorm:"type:decimal(14,2)" json:"cost"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	SKU         string          `gorm:"size:64;index" json:"sku"`
	Description string          `gorm:"type:text" json:"description"`
	Supplier    string          `gorm:"size:200" json:"supplier"`
	SearchKey   string          `gorm:"size:600" json:"-"`
	Version     int             `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type StockStatus string

const (
	StockOut  StockStatus = "out"
	StockLow  StockStatus = "low"
	StockGood StockStatus = "good"
)

func (p Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= p.MinStock:
		return StockLow
	default:
		return StockGood
	}
}
