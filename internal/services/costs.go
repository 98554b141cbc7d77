package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CostInput struct {
	Name        string              `json:"name" binding:"max=200"`
	Category    string              `json:"category" binding:"max=100"`
	Amount      decimal.Decimal     `json:"amount"`
	Budget      decimal.Decimal     `json:"budget"`
	ActualSpent decimal.Decimal     `json:"actual_spent"`
	Date        string              `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Description string              `json:"description"`
	Supplier    string              `json:"supplier"`
	Status      models.CostStatus   `json:"status"`
	Priority    models.CostPriority `json:"priority"`
	Version     int                 `json:"version"`
}

// CostRow is a cost item with its budget status.
type CostRow struct {
	models.CostItem
	BudgetStatus string `json:"budget_status"`
}

type CostStats struct {
	TotalBudget decimal.Decimal `json:"total_budget"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization decimal.Decimal `json:"utilization"`
	OverBudget  int             `json:"over_budget"`
	Critical    int             `json:"critical"`
}

type CostService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCostService(db *gorm.DB) *CostService { return &CostService{db: db, now: time.Now} }

// normalize validates the form and applies defaults: budget falls back to the
// amount, date to today, status to planned and priority to medium.
func (s *CostService) normalize(in *CostInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return validationf("name is required")
	case strings.TrimSpace(in.Category) == "":
		return validationf("category is required")
	case !in.Amount.IsPositive():
		return validationf("amount must be greater than zero")
	}
	err := errors.Join(
		checkAmount("amount", in.Amount),
		checkAmount("budget", in.Budget),
		checkAmount("actual_spent", in.ActualSpent),
	)
	if err != nil {
		return err
	}
	if in.Budget.IsZero() {
		in.Budget = in.Amount
	}
	if in.Date == "" {
		in.Date = s.now().Format(models.DateLayout)
	}
	if in.Status == "" {
		in.Status = models.CostPlanned
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Status.Valid() {
		return validationf("unknown status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return validationf("unknown priority %q", in.Priority)
	}
	return nil
}

func (s *CostService) List(ctx context.Context, q, category, status string) ([]CostRow, error) {
	query := s.db.WithContext(ctx)
	if q = models.FoldKey(q); q != "" {
		query = query.Where("search_key LIKE ?", "%"+q+"%")
	}
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var items []models.CostItem
	if err := query.Order("date DESC").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	rows := make([]CostRow, len(items))
	for i, c := range items {
		rows[i] = CostRow{CostItem: c, BudgetStatus: c.BudgetStatus()}
	}
	return rows, nil
}

func (s *CostService) Get(ctx context.Context, id string) (*models.CostItem, error) {
	var c models.CostItem
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "cost item", id)
	}
	return &c, nil
}

func (s *CostService) Create(ctx context.Context, in CostInput) (*models.CostItem, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}
	c := models.CostItem{
		ID:          utils.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Budget:      in.Budget,
		ActualSpent: in.ActualSpent,
		Date:        in.Date,
		Description: in.Description,
		Supplier:    in.Supplier,
		Status:      in.Status,
		Priority:    in.Priority,
		Version:     1,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create cost item: %w", err)
	}
	return &c, nil
}

func (s *CostService) Update(ctx context.Context, id string, in CostInput) (*models.CostItem, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}
	err := casUpdate(s.db.WithContext(ctx), &models.CostItem{}, id, in.Version, map[string]any{
		"name":         strings.TrimSpace(in.Name),
		"category":     strings.TrimSpace(in.Category),
		"amount":       in.Amount,
		"budget":       in.Budget,
		"actual_spent": in.ActualSpent,
		"date":         in.Date,
		"description":  in.Description,
		"supplier":     in.Supplier,
		"status":       in.Status,
		"priority":     in.Priority,
		"search_key":   models.CostSearchKey(in.Name, in.Description, in.Supplier),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CostService) Delete(ctx context.Context, id string) error {
	return deleteByID(s.db.WithContext(ctx), &models.CostItem{}, "cost item", id)
}

func (s *CostService) Stats(ctx context.Context) (*CostStats, error) {
	var items []models.CostItem
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("cost stats: %w", err)
	}

	stats := &CostStats{TotalBudget: decimal.Zero, TotalSpent: decimal.Zero, Utilization: decimal.Zero}
	for _, c := range items {
		stats.TotalBudget = stats.TotalBudget.Add(c.Budget)
		stats.TotalSpent = stats.TotalSpent.Add(c.ActualSpent)
		if c.ActualSpent.GreaterThan(c.Budget) {
			stats.OverBudget++
		}
		if c.Priority == models.PriorityCritical {
			stats.Critical++
		}
	}
	stats.Remaining = stats.TotalBudget.Sub(stats.TotalSpent)
	if stats.TotalBudget.IsPositive() {
		stats.Utilization = utils.Round2(stats.TotalSpent.Div(stats.TotalBudget).Mul(decimal.NewFromInt(100)))
	}
	return stats, nil
}
