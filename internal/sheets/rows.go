package sheets

import (
	"time"

	"moneta/internal/core"
)

// Column headers of the exported tables.
var (
	MonthlyHeader  = []any{"Month", "Income", "Expense", "Net"}
	CategoryHeader = []any{"Category", "Amount", "Percentage"}
	TotalsHeader   = []any{"Total income", "Total expenses", "Net balance", "Revision", "Generated"}
)

// TotalsRows renders the header block with the overall totals.
func TotalsRows(r Report) [][]any {
	s := r.Summary
	return [][]any{
		TotalsHeader,
		{s.TotalIncome.Float(), s.TotalExpenses.Float(), s.NetBalance.Float(), r.Revision, r.GeneratedAt.UTC().Format(time.RFC3339)},
	}
}

// MonthlyRows renders the monthly series, oldest month first.
func MonthlyRows(s core.Summary) [][]any {
	rows := make([][]any, 0, len(s.Monthly)+1)
	rows = append(rows, MonthlyHeader)
	for _, m := range s.Monthly {
		rows = append(rows, []any{m.Label, m.Income.Float(), m.Expense.Float(), m.Income.Sub(m.Expense).Float()})
	}
	return rows
}

// CategoryRows renders the expense breakdown. Percentages are rounded to
// two decimals.
func CategoryRows(s core.Summary) [][]any {
	rows := make([][]any, 0, len(s.CategoryBreakdown)+1)
	rows = append(rows, CategoryHeader)
	for _, c := range s.CategoryBreakdown {
		rows = append(rows, []any{c.Name, c.Amount.Float(), roundPct(c.Percentage)})
	}
	return rows
}

func roundPct(p float64) float64 {
	return float64(int64(p*100+0.5)) / 100
}
