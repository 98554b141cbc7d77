package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRollup(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		net     string
		payout  string
		daily   string
	}{
		{
			name: "profitable month",
			entries: []Entry{
				{Kind: KindSale, Date: "2025-03-01", Amount: d("25000")},
				{Kind: KindCOGS, Date: "2025-03-01", Amount: d("15000")},
				{Kind: KindFixedExpense, Amount: d("3000")},
			},
			net: "7000", payout: "3500", daily: "100",
		},
		{
			name: "loss is split too",
			entries: []Entry{
				{Kind: KindSale, Amount: d("1000")},
				{Kind: KindFixedExpense, Amount: d("3001")},
			},
			net: "-2001", payout: "-1000.5", daily: "100.03",
		},
		{
			name:    "manual transactions stay out",
			entries: []Entry{{Kind: KindManualIncome, Date: "2025-03-01", Amount: d("500"), Completed: true}},
			net:     "0", payout: "0", daily: "0",
		},
		{name: "empty", net: "0", payout: "0", daily: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rollup(tt.entries)
			if !r.NetProfit.Equal(d(tt.net)) {
				t.Fatalf("net = %s, want %s", r.NetProfit, tt.net)
			}
			if !r.PayoutShare.Equal(d(tt.payout)) {
				t.Fatalf("payout = %s, want %s", r.PayoutShare, tt.payout)
			}
			if !r.PayoutShare.Mul(decimal.NewFromInt(2)).Equal(r.NetProfit) {
				t.Fatalf("payout %s is not half of net %s", r.PayoutShare, r.NetProfit)
			}
			if !r.DailyCosts30Days.Equal(d(tt.daily)) {
				t.Fatalf("daily = %s, want %s", r.DailyCosts30Days, tt.daily)
			}
			want := r.TotalRevenue.Sub(r.CostOfGoodsSold).Sub(r.TotalCostsExcludingCOGS)
			if !r.NetProfit.Equal(want) {
				t.Fatalf("net %s != revenue - cogs - costs %s", r.NetProfit, want)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Kind: KindManualIncome, Date: "2025-03-02", Amount: d("1000"), Completed: true},
		{Kind: KindManualExpense, Date: "2025-03-03", Amount: d("250"), Completed: true},
		{Kind: KindManualIncome, Date: "2025-02-10", Amount: d("500"), Completed: true},
		{Kind: KindManualExpense, Date: "2025-03-04", Amount: d("999"), Completed: false},
		{Kind: KindSale, Date: "2025-03-05", Amount: d("300"), Completed: true},
		{Kind: KindFixedExpense, Amount: d("10000"), Completed: true},
	}

	all := Dashboard(entries, DashboardFilter{}, now)
	if !all.TotalIncome.Equal(d("1800")) || !all.TotalExpenses.Equal(d("250")) {
		t.Fatalf("totals = %s / %s, want 1800 / 250", all.TotalIncome, all.TotalExpenses)
	}
	if !all.MonthlyIncome.Equal(d("1300")) || !all.CashFlow.Equal(d("1050")) {
		t.Fatalf("monthly = %s, cash flow = %s", all.MonthlyIncome, all.CashFlow)
	}
	if !all.ProfitMargin.Equal(d("86.11")) {
		t.Fatalf("margin = %s, want 86.11", all.ProfitMargin)
	}
	if all.Entries != 5 {
		t.Fatalf("entries = %d, want 5 (undated entries excluded)", all.Entries)
	}

	recent := Dashboard(entries, DashboardFilter{From: "2025-03-01", Type: "expense"}, now)
	if !recent.TotalIncome.IsZero() || !recent.TotalExpenses.Equal(d("250")) {
		t.Fatalf("expense filter = %s / %s", recent.TotalIncome, recent.TotalExpenses)
	}
	if !recent.ProfitMargin.IsZero() {
		t.Fatalf("margin without income = %s, want 0", recent.ProfitMargin)
	}
}
