package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name        string             `json:"name" binding:"max=200"`
	Category    string             `json:"category" binding:"max=100"`
	Brand       string             `json:"brand" binding:"max=100"`
	Model       string             `json:"model"`
	Type        models.ProductType `json:"type"`
	Price       decimal.Decimal    `json:"price"`
	Cost        decimal.Decimal    `json:"cost"`
	Stock       int                `json:"stock" binding:"min=0"`
	MinStock    int                `json:"min_stock" binding:"min=0"`
	SKU         string             `json:"sku" binding:"max=64"`
	Description string             `json:"description"`
	Supplier    string             `json:"supplier"`
	Version     int                `json:"version"`
}

func (in *ProductInput) check() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return validationf("name is required")
	case strings.TrimSpace(in.Category) == "":
		return validationf("category is required")
	case strings.TrimSpace(in.Brand) == "":
		return validationf("brand is required")
	}
	if in.Type == "" {
		in.Type = models.TypeFrame
	}
	if !in.Type.Valid() {
		return validationf("unknown product type %q", in.Type)
	}
	if err := errors.Join(checkAmount("price", in.Price), checkAmount("cost", in.Cost)); err != nil {
		return err
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return validationf("price and cost must not be negative")
	}
	return nil
}

// ProductRow is a catalog entry with its computed stock status.
type ProductRow struct {
	models.Product
	StockStatus models.StockStatus `json:"stock_status"`
}

type ProductStats struct {
	Count       int             `json:"count"`
	StockValue  decimal.Decimal `json:"stock_value"`
	RetailValue decimal.Decimal `json:"retail_value"`
	LowStock    int             `json:"low_stock"`
	OutOfStock  int             `json:"out_of_stock"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService { return &ProductService{db: db} }

func (s *ProductService) List(ctx context.Context, q, category string) ([]ProductRow, error) {
	query := s.db.WithContext(ctx)
	if q = models.FoldKey(q); q != "" {
		query = query.Where("search_key LIKE ?", "%"+q+"%")
	}
	if category = strings.TrimSpace(category); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	rows := make([]ProductRow, len(products))
	for i, p := range products {
		rows[i] = ProductRow{Product: p, StockStatus: p.StockStatus()}
	}
	return rows, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p := models.Product{
		ID:          utils.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Brand:       strings.TrimSpace(in.Brand),
		Model:       in.Model,
		Type:        in.Type,
		Price:       in.Price,
		Cost:        in.Cost,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		SKU:         in.SKU,
		Description: in.Description,
		Supplier:    in.Supplier,
		Version:     1,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	err := casUpdate(s.db.WithContext(ctx), &models.Product{}, id, in.Version, map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"category":    strings.TrimSpace(in.Category),
		"brand":       strings.TrimSpace(in.Brand),
		"model":       in.Model,
		"type":        in.Type,
		"price":       in.Price,
		"cost":        in.Cost,
		"stock":       in.Stock,
		"min_stock":   in.MinStock,
		"sku":         in.SKU,
		"description": in.Description,
		"supplier":    in.Supplier,
		"search_key":  models.ProductSearchKey(in.Name, in.Brand, in.Model, in.SKU),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return deleteByID(s.db.WithContext(ctx), &models.Product{}, "product", id)
}

// Stats values the stock at cost and at retail and counts items needing a reorder.
func (s *ProductService) Stats(ctx context.Context) (*ProductStats, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}

	stats := &ProductStats{Count: len(products), StockValue: decimal.Zero, RetailValue: decimal.Zero}
	for _, p := range products {
		qty := decimal.NewFromInt(int64(p.Stock))
		stats.StockValue = stats.StockValue.Add(p.Cost.Mul(qty))
		stats.RetailValue = stats.RetailValue.Add(p.Price.Mul(qty))
		switch p.StockStatus() {
		case models.StockOut:
			stats.OutOfStock++
		case models.StockLow:
			stats.LowStock++
		}
	}
	return stats, nil
}
