package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go-optics-pos/internal/database"
	"go-optics-pos/internal/events"
	"go-optics-pos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ManualSaleInput struct {
	Date         string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Name         string          `json:"name" binding:"max=200"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
}

type LedgerView struct {
	Range  DateRange                  `json:"range"`
	Items  []models.SalesItem         `json:"items"`
	Totals database.SalesReportResult `json:"totals"`
}

type SyncResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// LedgerService keeps one sales row per order line. Operators annotate rows with a
// unit cost and may add rows of their own that no order produced.
type LedgerService struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db, now: time.Now}
}

// Subscribe re-derives the ledger on every committed order change, and right away
// when a change was published before the subscription.
func (s *LedgerService) Subscribe(bus *events.Bus) (cancel func()) {
	return bus.Orders.Subscribe(func(e events.OrdersChanged) {
		res, err := s.Sync(context.Background())
		if err != nil {
			log.Printf("ledger sync after order change #%d failed: %v", e.Seq, err)
			return
		}
		log.Printf("ledger synced after order change #%d: +%d ~%d -%d", e.Seq, res.Added, res.Updated, res.Removed)
	}, true)
}

// Sync merges the rows derived from the current orders into the ledger. Existing
// derived rows keep their cost and take the order's date, name, quantity and price;
// rows whose order line is gone are dropped. Manual rows are never touched.
func (s *LedgerService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &SyncResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders []models.Order
		if err := tx.Preload("Items", orderedItems).Find(&orders).Error; err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		var existing []models.SalesItem
		if err := tx.Where("source = ?", models.SourceOrder).Find(&existing).Error; err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		costs, err := productCosts(tx, orders)
		if err != nil {
			return err
		}

		current := make(map[string]*models.SalesItem, len(existing))
		for i := range existing {
			current[existing[i].ID] = &existing[i]
		}

		var added []models.SalesItem
		seen := make(map[string]bool)
		for _, o := range orders {
			for _, it := range o.Items {
				id := models.DerivedSalesID(o.ID, it.ID)
				seen[id] = true

				row, ok := current[id]
				if !ok {
					fresh := models.SalesItem{
						ID:           id,
						Source:       models.SourceOrder,
						OrderID:      o.ID,
						ItemID:       it.ID,
						Date:         o.OrderDate,
						Name:         it.Name,
						Quantity:     it.Qty(),
						PricePerUnit: it.UnitPrice(),
						CostPerUnit:  decimal.Zero,
					}
					if it.ProductID != nil {
						if c, ok := costs[*it.ProductID]; ok {
							fresh.CostPerUnit = c
						}
					}
					fresh.Recalculate()
					added = append(added, fresh)
					continue
				}

				if row.Date == o.OrderDate && row.Name == it.Name &&
					row.Quantity.Equal(it.Qty()) && row.PricePerUnit.Equal(it.UnitPrice()) {
					continue
				}
				row.Date, row.Name = o.OrderDate, it.Name
				row.Quantity, row.PricePerUnit = it.Qty(), it.UnitPrice()
				row.Recalculate()
				if err := tx.Save(row).Error; err != nil {
					return fmt.Errorf("refresh ledger row %s: %w", row.ID, err)
				}
				result.Updated++
			}
		}

		if len(added) > 0 {
			if err := tx.CreateInBatches(&added, 100).Error; err != nil {
				return fmt.Errorf("append ledger rows: %w", err)
			}
			result.Added = len(added)
		}

		var orphans []string
		for id := range current {
			if !seen[id] {
				orphans = append(orphans, id)
			}
		}
		if len(orphans) > 0 {
			if err := tx.Where("id IN ?", orphans).Delete(&models.SalesItem{}).Error; err != nil {
				return fmt.Errorf("drop orphaned ledger rows: %w", err)
			}
			result.Removed = len(orphans)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func productCosts(tx *gorm.DB, orders []models.Order) (map[string]decimal.Decimal, error) {
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			if it.ProductID != nil {
				ids = append(ids, *it.ProductID)
			}
		}
	}
	costs := make(map[string]decimal.Decimal)
	if len(ids) == 0 {
		return costs, nil
	}

	var products []models.Product
	if err := tx.Select("id", "cost").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load product costs: %w", err)
	}
	for _, p := range products {
		costs[p.ID] = p.Cost
	}
	return costs, nil
}

// List returns the rows within r, most recent first, with their totals.
func (s *LedgerService) List(ctx context.Context, r DateRange) (*LedgerView, error) {
	db := s.db.WithContext(ctx)
	from, to := r.bounds()

	var items []models.SalesItem
	err := db.Where("date BETWEEN ? AND ?", from, to).
		Order("date DESC").Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}

	totals, err := database.GetSalesReport(db, from, to)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	return &LedgerView{Range: r, Items: items, Totals: *totals}, nil
}

// Range resolves a period name or explicit bounds against the service clock.
func (s *LedgerService) Range(period, start, end string) (DateRange, error) {
	return LedgerRange(period, start, end, s.now())
}

// UpdateCost sets the unit cost of one row and recomputes its cost and profit.
func (s *LedgerService) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) (*models.SalesItem, error) {
	if err := checkAmount("cost_per_unit", cost); err != nil {
		return nil, err
	}
	if cost.IsNegative() {
		return nil, validationf("cost per unit must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db.WithContext(ctx)
	var row models.SalesItem
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "sales row", id)
	}
	row.CostPerUnit = cost
	row.Recalculate()
	if err := db.Save(&row).Error; err != nil {
		return nil, fmt.Errorf("update cost: %w", err)
	}
	return &row, nil
}

func (s *LedgerService) AddManual(ctx context.Context, in ManualSaleInput) (*models.SalesItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("name is required")
	}
	err := errors.Join(
		checkAmount("quantity", in.Quantity),
		checkAmount("price_per_unit", in.PricePerUnit),
		checkAmount("cost_per_unit", in.CostPerUnit),
	)
	if err != nil {
		return nil, err
	}
	if in.Quantity.IsNegative() || in.PricePerUnit.IsNegative() || in.CostPerUnit.IsNegative() {
		return nil, validationf("quantity, price and cost must not be negative")
	}
	if in.Date == "" {
		in.Date = s.now().Format(models.DateLayout)
	}

	row := models.SalesItem{
		ID:           uuid.NewString(),
		Source:       models.SourceManual,
		Date:         in.Date,
		Name:         strings.TrimSpace(in.Name),
		Quantity:     in.Quantity,
		PricePerUnit: in.PricePerUnit,
		CostPerUnit:  in.CostPerUnit,
	}
	row.Recalculate()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("add sales row: %w", err)
	}
	return &row, nil
}

// DeleteManual removes an operator-added row. Order rows follow their order.
func (s *LedgerService) DeleteManual(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)
	var row models.SalesItem
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return notFound(err, "sales row", id)
	}
	if !row.IsManual() {
		return validationf("row %s is derived from an order and cannot be deleted", id)
	}
	return deleteByID(db, &models.SalesItem{}, "sales row", id)
}
