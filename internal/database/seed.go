package database

import (
	"fmt"
	"log"
	"time"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultExpenses is the monthly cost sheet the payout calculator starts from.
var DefaultExpenses = []struct {
	Name   string
	Amount int64
}{
	{"Salary and taxes", 200000},
	{"Turnover percent", 110178},
	{"Regular goods purchase", 100000},
	{"Rent, utilities, internet", 340000},
	{"Targeted marketing", 300000},
	{"Accountant", 30000},
	{"Webkassa", 3000},
	{"Goods delivery", 4600},
	{"OFD fee", 1100},
	{"Workshop masters", 50000},
	{"Kaspi LLP commissions", 0},
	{"Kaspi IE commissions", 66100},
	{"Fuel and other", 35000},
	{"Loan payment", 150000},
	{"Partner draw", 30000},
	{"Bank fees", 20000},
}

// SeedDemoData fills empty collections with a starter catalog, cost plan, expense sheet
// and a few ledger transactions. Collections that already hold rows are left alone.
func SeedDemoData(db *gorm.DB) error {
	today := time.Now().Format(models.DateLayout)

	seeds := []struct {
		name  string
		model any
		rows  func() any
	}{
		{"products", &models.Product{}, func() any { v := demoProducts(); return &v }},
		{"cost items", &models.CostItem{}, func() any { v := demoCosts(today); return &v }},
		{"expense items", &models.ExpenseItem{}, func() any { v := defaultExpenseItems(); return &v }},
		{"transactions", &models.FinancialTransaction{}, func() any { v := demoTransactions(today); return &v }},
	}

	for _, s := range seeds {
		var count int64
		if err := db.Model(s.model).Count(&count).Error; err != nil {
			return fmt.Errorf("count %s: %w", s.name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(s.rows()).Error; err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
		log.Printf("Seeded %s", s.name)
	}
	return nil
}

func defaultExpenseItems() []models.ExpenseItem {
	items := make([]models.ExpenseItem, 0, len(DefaultExpenses))
	for i, e := range DefaultExpenses {
		items = append(items, models.ExpenseItem{
			ID:       utils.NewID(),
			Name:     e.Name,
			Amount:   decimal.NewFromInt(e.Amount),
			Position: i,
		})
	}
	return items
}

func demoProducts() []models.Product {
	p := func(name, category, brand, model string, typ models.ProductType, price, cost int64, stock, minStock int, sku, supplier string) models.Product {
		return models.Product{
			ID: utils.NewID(), Name: name, Category: category, Brand: brand, Model: model, Type: typ,
			Price: decimal.NewFromInt(price), Cost: decimal.NewFromInt(cost),
			Stock: stock, MinStock: minStock, SKU: sku, Supplier: supplier, Version: 1,
		}
	}
	return []models.Product{
		p("Ray-Ban Aviator frame", "Frames", "Ray-Ban", "RB3025", models.TypeFrame, 25000, 15000, 15, 5, "RB-3025-001", "Luxottica"),
		p("Essilor progressive lenses", "Lenses", "Essilor", "Varilux Comfort", models.TypeLens, 45000, 30000, 8, 3, "ES-VC-001", "Essilor"),
		p("Glasses case", "Accessories", "Generic", "Soft Case", models.TypeAccessory, 3000, 1500, 50, 20, "ACC-CASE-001", "Local Supplier"),
		p("Frame fitting", "Services", "In-house", "Fitting Service", models.TypeService, 5000, 2000, 999, 0, "SRV-FIT-001", "Internal"),
	}
}

func demoCosts(today string) []models.CostItem {
	c := func(name, category string, amount, budget, spent int64, supplier string, status models.CostStatus, prio models.CostPriority) models.CostItem {
		return models.CostItem{
			ID: utils.NewID(), Name: name, Category: category,
			Amount: decimal.NewFromInt(amount), Budget: decimal.NewFromInt(budget), ActualSpent: decimal.NewFromInt(spent),
			Date: today, Supplier: supplier, Status: status, Priority: prio, Version: 1,
		}
	}
	return []models.CostItem{
		c("New frames purchase", "Goods purchase", 150000, 200000, 145000, "Luxottica", models.CostCompleted, models.PriorityHigh),
		c("Shop rent", "Rent", 150000, 150000, 150000, "Landlord LLP", models.CostCompleted, models.PriorityCritical),
		c("Staff salary", "Salaries", 200000, 200000, 0, "Internal", models.CostPlanned, models.PriorityCritical),
		c("Social media ads", "Marketing", 50000, 30000, 45000, "Meta Platforms", models.CostInProgress, models.PriorityMedium),
		c("Diagnostic equipment upgrade", "Equipment", 300000, 250000, 0, "Medical Equipment", models.CostPlanned, models.PriorityHigh),
	}
}

func demoTransactions(today string) []models.FinancialTransaction {
	t := func(typ models.TransactionType, category, desc string, amount int64, method string) models.FinancialTransaction {
		return models.FinancialTransaction{
			ID: utils.NewID(), Date: today, Type: typ, Category: category, Description: desc,
			Amount: decimal.NewFromInt(amount), PaymentMethod: method, Status: models.TxCompleted,
		}
	}
	return []models.FinancialTransaction{
		t(models.Expense, "Goods purchase", "New frames from supplier", 25000, "Transfer"),
		t(models.Expense, "Rent", "Monthly rent", 150000, "Transfer"),
		t(models.Income, "Services", "Frame fitting", 5000, "Card"),
	}
}
