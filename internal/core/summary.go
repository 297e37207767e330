package core

import "time"

// CategorySlice is one entry of the expense breakdown by category.
type CategorySlice struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Amount     Money   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// YearMonth is an orderable calendar month key.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthBucket holds the income and expense sums for one calendar month.
type MonthBucket struct {
	Key     YearMonth `json:"-"`
	Label   string    `json:"label"`
	Income  Money     `json:"income"`
	Expense Money     `json:"expense"`
}

// SkippedTransaction records a transaction left out of the monthly series.
type SkippedTransaction struct {
	ID   string
	Date string
	Err  error
}

// Summary bundles every derived view over a transaction sequence.
type Summary struct {
	TotalIncome       Money           `json:"totalIncome"`
	TotalExpenses     Money           `json:"totalExpenses"`
	NetBalance        Money           `json:"netBalance"`
	CategoryBreakdown []CategorySlice `json:"categoryBreakdown"`
	Monthly           []MonthBucket   `json:"monthly"`
}

// Before reports whether ym sorts before o.
func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Label renders the month like "Jan 2024".
func (ym YearMonth) Label() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}
