package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CostStatus string

const (
	CostPlanned    CostStatus = "planned"
	CostInProgress CostStatus = "in_progress"
	CostCompleted  CostStatus = "completed"
	CostOverdue    CostStatus = "overdue"
)

func (s CostStatus) Valid() bool {
	switch s {
	case CostPlanned, CostInProgress, CostCompleted, CostOverdue:
		return true
	}
	return false
}

type CostPriority string

const (
	PriorityLow      CostPriority = "low"
	PriorityMedium   CostPriority = "medium"
	PriorityHigh     CostPriority = "high"
	PriorityCritical CostPriority = "critical"
)

func (p CostPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// CostItem - a budgeted spend the shop is tracking
type CostItem struct {
	ID          string          `gorm:"primaryKey;size:32" json:"id"`
	Name        string          `gorm:"size:200" json:"name"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Budget      decimal.Decimal `gorm:"type:decimal(14,2)" json:"budget"`
	ActualSpent decimal.Decimal `gorm:"type:decimal(14,2)" json:"actual_spent"`
	Date        string          `gorm:"size:10" json:"date"`
	Description string          `gorm:"type:text" json:"description"`
	Supplier    string          `gorm:"size:200" json:"supplier"`
	Status      CostStatus      `gorm:"size:20;index" json:"status"`
	Priority    CostPriority    `gorm:"size:20" json:"priority"`
	SearchKey   string          `gorm:"type:text" json:"-"`
	Version     int             `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BudgetStatus is "over", "exact" or "under".
func (c CostItem) BudgetStatus() string {
	switch c.ActualSpent.Cmp(c.Budget) {
	case 1:
		return "over"
	case 0:
		return "exact"
	default:
		return "under"
	}
}

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxPending   TransactionStatus = "pending"
	TxCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TxCompleted, TxPending, TxCancelled:
		return true
	}
	return false
}

// FinancialTransaction - a manual income/expense entry. Rows are never deleted,
// a mistaken entry is cancelled instead.
type FinancialTransaction struct {
	ID            string            `gorm:"primaryKey;size:32" json:"id"`
	Date          string            `gorm:"size:10;index" json:"date"`
	Type          TransactionType   `gorm:"size:10;index" json:"type"`
	Category      string            `gorm:"size:100" json:"category"`
	Description   string            `gorm:"size:300" json:"description"`
	Amount        decimal.Decimal   `gorm:"type:decimal(14,2)" json:"amount"`
	PaymentMethod string            `gorm:"size:50" json:"payment_method"`
	Status        TransactionStatus `gorm:"size:20" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ExpenseItem - a recurring monthly cost line of the payout calculator
type ExpenseItem struct {
	ID        string          `gorm:"primaryKey;size:32" json:"id"`
	Name      string          `gorm:"size:200" json:"name"`
	NameKey   string          `gorm:"size:200;index" json:"-"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Position  int             `json:"position"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
