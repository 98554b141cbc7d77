// Package finance turns every money movement of the shop into one list of entries
// and derives the payout rollup and the dashboard from it.
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindSale          Kind = "sale"           // ledger sales amount
	KindCOGS          Kind = "cogs"           // ledger total cost
	KindFixedExpense  Kind = "fixed_expense"  // monthly expense sheet line, undated
	KindManualIncome  Kind = "manual_income"  // recorded transaction
	KindManualExpense Kind = "manual_expense" // recorded transaction
)

const (
	DirectionIncome  = "income"
	DirectionExpense = "expense"
)

type Entry struct {
	Date        string          `json:"date,omitempty"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Completed   bool            `json:"completed"`
}

func (e Entry) Direction() string {
	switch e.Kind {
	case KindSale, KindManualIncome:
		return DirectionIncome
	}
	return DirectionExpense
}

var (
	thirty = decimal.NewFromInt(30)
	half   = decimal.NewFromFloat(0.5)
)

type RollupResult struct {
	TotalRevenue            decimal.Decimal `json:"total_revenue"`
	CostOfGoodsSold         decimal.Decimal `json:"cost_of_goods_sold"`
	TotalCostsExcludingCOGS decimal.Decimal `json:"total_costs_excluding_cogs"`
	DailyCosts30Days        decimal.Decimal `json:"daily_costs_30_days"`
	NetProfit               decimal.Decimal `json:"net_profit"`
	PayoutShare             decimal.Decimal `json:"payout_share"`
}

// Rollup is the payout calculator: sales revenue less cost of goods and the
// monthly expense sheet, split in half. Recorded transactions do not enter it.
func Rollup(entries []Entry) RollupResult {
	r := RollupResult{
		TotalRevenue:            decimal.Zero,
		CostOfGoodsSold:         decimal.Zero,
		TotalCostsExcludingCOGS: decimal.Zero,
	}
	for _, e := range entries {
		switch e.Kind {
		case KindSale:
			r.TotalRevenue = r.TotalRevenue.Add(e.Amount)
		case KindCOGS:
			r.CostOfGoodsSold = r.CostOfGoodsSold.Add(e.Amount)
		case KindFixedExpense:
			r.TotalCostsExcludingCOGS = r.TotalCostsExcludingCOGS.Add(e.Amount)
		}
	}
	r.DailyCosts30Days = r.TotalCostsExcludingCOGS.Div(thirty).Round(2)
	r.NetProfit = r.TotalRevenue.Sub(r.CostOfGoodsSold).Sub(r.TotalCostsExcludingCOGS)
	r.PayoutShare = r.NetProfit.Mul(half)
	return r
}

type DashboardFilter struct {
	From string // inclusive YYYY-MM-DD, empty for no lower bound
	Type string // "", "all", "income" or "expense"
}

type DashboardResult struct {
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	ProfitMargin    decimal.Decimal `json:"profit_margin"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	CashFlow        decimal.Decimal `json:"cash_flow"`
	Entries         int             `json:"entries"`
}

// Dashboard sums the dated, completed entries passing the filter. The monthly
// figures cover the calendar month of now.
func Dashboard(entries []Entry, f DashboardFilter, now time.Time) DashboardResult {
	zero := decimal.Zero
	d := DashboardResult{
		TotalIncome: zero, TotalExpenses: zero,
		MonthlyIncome: zero, MonthlyExpenses: zero,
		ProfitMargin: zero,
	}
	month := now.Format("2006-01")

	for _, e := range entries {
		if e.Date == "" || (f.From != "" && e.Date < f.From) {
			continue
		}
		if f.Type != "" && f.Type != "all" && e.Direction() != f.Type {
			continue
		}
		d.Entries++
		if !e.Completed {
			continue
		}

		thisMonth := len(e.Date) >= 7 && e.Date[:7] == month
		if e.Direction() == DirectionIncome {
			d.TotalIncome = d.TotalIncome.Add(e.Amount)
			if thisMonth {
				d.MonthlyIncome = d.MonthlyIncome.Add(e.Amount)
			}
		} else {
			d.TotalExpenses = d.TotalExpenses.Add(e.Amount)
			if thisMonth {
				d.MonthlyExpenses = d.MonthlyExpenses.Add(e.Amount)
			}
		}
	}

	d.NetProfit = d.TotalIncome.Sub(d.TotalExpenses)
	if d.TotalIncome.IsPositive() {
		d.ProfitMargin = d.NetProfit.Div(d.TotalIncome).Mul(decimal.NewFromInt(100)).Round(2)
	}
	d.CashFlow = d.MonthlyIncome.Sub(d.MonthlyExpenses)
	return d
}
