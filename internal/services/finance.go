package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-optics-pos/internal/finance"
	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseInput struct {
	Name   string          `json:"name" binding:"max=200"`
	Amount decimal.Decimal `json:"amount"`
}

type TransactionInput struct {
	Date          string                   `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Type          models.TransactionType   `json:"type" binding:"required,oneof=income expense"`
	Category      string                   `json:"category" binding:"max=100"`
	Description   string                   `json:"description" binding:"max=300"`
	Amount        decimal.Decimal          `json:"amount"`
	PaymentMethod string                   `json:"payment_method" binding:"max=50"`
	Status        models.TransactionStatus `json:"status"`
}

type ExpenseSheet struct {
	Items            []models.ExpenseItem `json:"items"`
	Total            decimal.Decimal      `json:"total"`
	DailyCosts30Days decimal.Decimal      `json:"daily_costs_30_days"`
}

// FinanceService owns the expense sheet and the transaction log and projects
// both, together with the sales ledger, into the rollup and the dashboard.
type FinanceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewFinanceService(db *gorm.DB) *FinanceService { return &FinanceService{db: db, now: time.Now} }

func (s *FinanceService) ListExpenses(ctx context.Context) (*ExpenseSheet, error) {
	var items []models.ExpenseItem
	if err := s.db.WithContext(ctx).Order("position").Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	sheet := &ExpenseSheet{Items: items, Total: decimal.Zero}
	for _, it := range items {
		sheet.Total = sheet.Total.Add(it.Amount)
	}
	sheet.DailyCosts30Days = sheet.Total.Div(decimal.NewFromInt(30)).Round(2)
	return sheet, nil
}

func (s *FinanceService) checkExpense(db *gorm.DB, in ExpenseInput, exceptID string) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return validationf("name is required")
	}
	if err := checkAmount("amount", in.Amount); err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return validationf("amount must not be negative")
	}

	query := db.Model(&models.ExpenseItem{}).Where("name_key = ?", models.FoldKey(name))
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("expense %q: %w", name, ErrDuplicateName)
	}
	return nil
}

func (s *FinanceService) AddExpense(ctx context.Context, in ExpenseInput) (*models.ExpenseItem, error) {
	item := models.ExpenseItem{ID: utils.NewID(), Name: strings.TrimSpace(in.Name), Amount: in.Amount}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkExpense(tx, in, ""); err != nil {
			return err
		}
		var last struct{ Max int }
		if err := tx.Model(&models.ExpenseItem{}).Select("COALESCE(MAX(position), 0) AS max").Scan(&last).Error; err != nil {
			return err
		}
		item.Position = last.Max + 1
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *FinanceService) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (*models.ExpenseItem, error) {
	var item models.ExpenseItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return notFound(err, "expense", id)
		}
		if err := s.checkExpense(tx, in, id); err != nil {
			return err
		}
		item.Name, item.Amount = strings.TrimSpace(in.Name), in.Amount
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *FinanceService) DeleteExpense(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return deleteByID(s.db.WithContext(ctx), &models.ExpenseItem{}, "expense", id)
}

// ListTransactions returns the log within r, newest first. typ narrows to income or expense.
func (s *FinanceService) ListTransactions(ctx context.Context, r DateRange, typ string) ([]models.FinancialTransaction, error) {
	from, to := r.bounds()
	query := s.db.WithContext(ctx).Where("date BETWEEN ? AND ?", from, to)
	if typ != "" && typ != "all" {
		query = query.Where("type = ?", typ)
	}
	var txs []models.FinancialTransaction
	if err := query.Order("date DESC").Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// AddTransaction appends to the log. Entries are never edited or deleted, only
// moved between statuses.
func (s *FinanceService) AddTransaction(ctx context.Context, in TransactionInput) (*models.FinancialTransaction, error) {
	if in.Type != models.Income && in.Type != models.Expense {
		return nil, validationf("type must be income or expense")
	}
	if err := checkAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, validationf("amount must be greater than zero")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, validationf("description is required")
	}
	if in.Status == "" {
		in.Status = models.TxCompleted
	}
	if !in.Status.Valid() {
		return nil, validationf("unknown status %q", in.Status)
	}
	if in.Date == "" {
		in.Date = s.now().Format(models.DateLayout)
	}

	tx := models.FinancialTransaction{
		ID:            utils.NewID(),
		Date:          in.Date,
		Type:          in.Type,
		Category:      strings.TrimSpace(in.Category),
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
	}
	if err := s.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return nil, fmt.Errorf("add transaction: %w", err)
	}
	return &tx, nil
}

func (s *FinanceService) SetTransactionStatus(ctx context.Context, id string, status models.TransactionStatus) (*models.FinancialTransaction, error) {
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	db := s.db.WithContext(ctx)
	var tx models.FinancialTransaction
	if err := db.First(&tx, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "transaction", id)
	}
	if err := db.Model(&tx).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	tx.Status = status
	return &tx, nil
}

// Entries collects every money movement within r: ledger sales and their cost,
// the expense sheet (undated, always included) and the transaction log.
func (s *FinanceService) Entries(ctx context.Context, r DateRange) ([]finance.Entry, error) {
	db := s.db.WithContext(ctx)
	from, to := r.bounds()

	var sales []models.SalesItem
	if err := db.Where("date BETWEEN ? AND ?", from, to).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	var expenses []models.ExpenseItem
	if err := db.Order("position").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	txs, err := s.ListTransactions(ctx, r, "")
	if err != nil {
		return nil, err
	}

	entries := make([]finance.Entry, 0, 2*len(sales)+len(expenses)+len(txs))
	for _, row := range sales {
		entries = append(entries,
			finance.Entry{Date: row.Date, Kind: finance.KindSale, Category: "sales", Description: row.Name, Amount: row.SalesAmount, Completed: true},
			finance.Entry{Date: row.Date, Kind: finance.KindCOGS, Category: "cost of goods", Description: row.Name, Amount: row.TotalCost, Completed: true},
		)
	}
	for _, e := range expenses {
		entries = append(entries, finance.Entry{Kind: finance.KindFixedExpense, Description: e.Name, Amount: e.Amount, Completed: true})
	}
	for _, t := range txs {
		kind := finance.KindManualExpense
		if t.Type == models.Income {
			kind = finance.KindManualIncome
		}
		entries = append(entries, finance.Entry{
			Date: t.Date, Kind: kind, Category: t.Category, Description: t.Description,
			Amount: t.Amount, Completed: t.Status == models.TxCompleted,
		})
	}
	return entries, nil
}

func (s *FinanceService) Rollup(ctx context.Context, r DateRange) (*finance.RollupResult, error) {
	entries, err := s.Entries(ctx, r)
	if err != nil {
		return nil, err
	}
	res := finance.Rollup(entries)
	return &res, nil
}

// Dashboard projects the trailing period (week, month, quarter, year, all).
func (s *FinanceService) Dashboard(ctx context.Context, period, typ string) (*finance.DashboardResult, error) {
	now := s.now()
	r, err := TrailingRange(period, now)
	if err != nil {
		return nil, err
	}
	if typ != "" && typ != "all" && typ != finance.DirectionIncome && typ != finance.DirectionExpense {
		return nil, validationf("unknown type %q", typ)
	}
	entries, err := s.Entries(ctx, r)
	if err != nil {
		return nil, err
	}
	res := finance.Dashboard(entries, finance.DashboardFilter{From: r.From, Type: typ}, now)
	return &res, nil
}
