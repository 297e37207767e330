package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core"
)

func sampleSummary() core.Summary {
	txs := []core.Transaction{
		{ID: "a", Amount: core.MustMoney("1000"), Date: "2024-01-01", Category: "salary", Type: core.Income},
		{ID: "b", Amount: core.MustMoney("200"), Date: "2024-01-05", Category: "food", Type: core.Expense},
		{ID: "c", Amount: core.MustMoney("100"), Date: "2024-02-05", Category: "utilities", Type: core.Expense},
	}
	s, _ := core.Summarize(txs, core.DefaultCategories())
	return s
}

func TestMonthlyRows(t *testing.T) {
	rows := MonthlyRows(sampleSummary())
	require.Len(t, rows, 3)
	assert.Equal(t, MonthlyHeader, rows[0])
	assert.Equal(t, []any{"Jan 2024", 1000.0, 200.0, 800.0}, rows[1])
	assert.Equal(t, []any{"Feb 2024", 0.0, 100.0, -100.0}, rows[2])
}

func TestCategoryRows(t *testing.T) {
	rows := CategoryRows(sampleSummary())
	require.Len(t, rows, 3)
	assert.Equal(t, CategoryHeader, rows[0])
	assert.Equal(t, []any{"Food", 200.0, 66.67}, rows[1])
	assert.Equal(t, []any{"Utilities", 100.0, 33.33}, rows[2])
}

func TestTotalsRows(t *testing.T) {
	r := Report{
		Revision:    4,
		GeneratedAt: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		Summary:     sampleSummary(),
	}
	rows := TotalsRows(r)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{1000.0, 300.0, 700.0, uint64(4), "2024-05-10T09:30:00Z"}, rows[1])
}

func TestRowsEmptySummary(t *testing.T) {
	s, _ := core.Summarize(nil, nil)
	assert.Equal(t, [][]any{MonthlyHeader}, MonthlyRows(s))
	assert.Equal(t, [][]any{CategoryHeader}, CategoryRows(s))
}
