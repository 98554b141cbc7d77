package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Sales"

var ledgerHeader = []any{"Date", "Name", "Quantity", "Price per unit", "Sales amount", "Cost per unit", "Total cost", "Profit", "Source"}

// ExportXLSX writes the ledger rows within r as a spreadsheet with a totals line.
func (s *LedgerService) ExportXLSX(ctx context.Context, r DateRange, w io.Writer) error {
	view, err := s.List(ctx, r)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &ledgerHeader); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, it := range view.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export row %d: %w", i+1, err)
		}
		row := []any{
			it.Date,
			it.Name,
			it.Quantity.InexactFloat64(),
			it.PricePerUnit.InexactFloat64(),
			it.SalesAmount.InexactFloat64(),
			it.CostPerUnit.InexactFloat64(),
			it.TotalCost.InexactFloat64(),
			it.Profit.InexactFloat64(),
			it.Source,
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return fmt.Errorf("export row %d: %w", i+1, err)
		}
	}

	totalRow := len(view.Items) + 2
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return fmt.Errorf("export totals: %w", err)
	}
	totals := []any{
		"Total", "", "", "",
		view.Totals.TotalRevenue.InexactFloat64(), "",
		view.Totals.TotalCost.InexactFloat64(),
		view.Totals.TotalProfit.InexactFloat64(),
	}
	if err := f.SetSheetRow(ledgerSheet, cell, &totals); err != nil {
		return fmt.Errorf("export totals: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", "I1", bold); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetCellStyle(ledgerSheet, cell, fmt.Sprintf("I%d", totalRow), bold); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 12},
		{"B", "B", 32},
		{"C", "I", 14},
	}
	for _, cw := range widths {
		if err := f.SetColWidth(ledgerSheet, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	return f.Write(w)
}
