package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalIncome sums the amounts of income transactions.
func TotalIncome(txs []Transaction) Money {
	return sumByType(txs, Income)
}

// TotalExpenses sums the amounts of expense transactions.
func TotalExpenses(txs []Transaction) Money {
	return sumByType(txs, Expense)
}

// NetBalance is TotalIncome minus TotalExpenses.
func NetBalance(txs []Transaction) Money {
	return TotalIncome(txs).Sub(TotalExpenses(txs))
}

func sumByType(txs []Transaction, t TransactionType) Money {
	var total Money
	for _, tx := range txs {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryBreakdown groups expenses by category in order of first
// appearance. Categories missing from cats are reported with their id as
// name and FallbackColor. Percentages are relative to total expenses and
// are all zero when there are no expenses.
func CategoryBreakdown(txs []Transaction, cats []Category) []CategorySlice {
	byID := make(map[string]Category, len(cats))
	for _, c := range cats {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = c
		}
	}

	index := make(map[string]int)
	var out []CategorySlice
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			c, found := byID[tx.Category]
			if !found {
				c = Category{ID: tx.Category, Name: tx.Category, Color: FallbackColor}
			}
			out = append(out, CategorySlice{ID: tx.Category, Name: c.Name, Color: c.Color})
			i = len(out) - 1
			index[tx.Category] = i
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}

	total := TotalExpenses(txs)
	for i := range out {
		if total.IsPositive() {
			out[i].Percentage = out[i].Amount.Decimal.Div(total.Decimal).Mul(hundred).InexactFloat64()
		}
	}
	return out
}

// MonthlySeries groups transactions by calendar month and returns the
// buckets in ascending chronological order. Transactions whose date cannot
// be parsed are returned as skipped and do not affect the other buckets.
func MonthlySeries(txs []Transaction) ([]MonthBucket, []SkippedTransaction) {
	buckets := make(map[YearMonth]*MonthBucket)
	var skipped []SkippedTransaction

	for _, tx := range txs {
		d, err := ParseDate(tx.Date)
		if err != nil {
			skipped = append(skipped, SkippedTransaction{
				ID:   tx.ID,
				Date: tx.Date,
				Err:  fmt.Errorf("parse date %q: %w", tx.Date, err),
			})
			continue
		}
		key := YearMonth{Year: d.Year(), Month: d.Month()}
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{Key: key, Label: key.Label()}
			buckets[key] = b
		}
		switch tx.Type {
		case Income:
			b.Income = b.Income.Add(tx.Amount)
		case Expense:
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Before(out[j].Key)
	})
	return out, skipped
}

// Summarize computes every derived view at once.
func Summarize(txs []Transaction, cats []Category) (Summary, []SkippedTransaction) {
	income := TotalIncome(txs)
	expenses := TotalExpenses(txs)
	monthly, skipped := MonthlySeries(txs)
	breakdown := CategoryBreakdown(txs, cats)
	if breakdown == nil {
		breakdown = []CategorySlice{}
	}
	return Summary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetBalance:        income.Sub(expenses),
		CategoryBreakdown: breakdown,
		Monthly:           monthly,
	}, skipped
}
