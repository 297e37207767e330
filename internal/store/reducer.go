package store

import (
	"fmt"
	"slices"

	"moneta/internal/core"
)

// Reduce applies a to s and returns the next state. s is never modified.
// On error the returned state is s unchanged.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case AddTransaction:
		if a.Transaction.ID == "" {
			return s, ErrMissingID
		}
		if s.transactionIndex(a.Transaction.ID) >= 0 {
			return s, ErrDuplicateTransaction
		}
		next := s.Clone()
		next.Transactions = append(next.Transactions, a.Transaction)
		return next, nil

	case DeleteTransaction:
		i := s.transactionIndex(a.ID)
		if a.ID == "" || i < 0 {
			return s, ErrTransactionNotFound
		}
		next := s.Clone()
		next.Transactions = slices.Delete(next.Transactions, i, i+1)
		return next, nil

	case EditTransaction:
		if a.Transaction.ID == "" {
			return s, ErrMissingID
		}
		i := s.transactionIndex(a.Transaction.ID)
		if i < 0 {
			return s, ErrTransactionNotFound
		}
		prev := s.Transactions[i]
		updated := a.Transaction
		if updated.Date == "" {
			updated.Date = prev.Date
		}
		if updated.Category == "" {
			updated.Category = prev.Category
		}
		if updated.Type == "" {
			updated.Type = prev.Type
		}
		next := s.Clone()
		next.Transactions[i] = updated
		return next, nil

	case AddCategory:
		if a.Category.ID == "" {
			return s, ErrEmptyCategoryName
		}
		if s.categoryIndex(a.Category.ID) >= 0 {
			return s, ErrDuplicateCategory
		}
		next := s.Clone()
		next.Categories = append(next.Categories, a.Category)
		return next, nil

	case DeleteCategory:
		if s.categoryIndex(a.ID) < 0 {
			return s, ErrCategoryNotFound
		}
		next := s.Clone()
		next.Categories = slices.DeleteFunc(next.Categories, func(c core.Category) bool { return c.ID == a.ID })
		return next, nil

	case ToggleDisplayMode:
		next := s.Clone()
		next.DisplayMode = s.DisplayMode.Toggle()
		return next, nil

	case LoadSnapshot:
		next := s.Clone()
		if a.Transactions != nil {
			next.Transactions = slices.Clone(a.Transactions)
		}
		if a.Categories != nil {
			next.Categories = slices.Clone(a.Categories)
		}
		if a.DisplayMode != "" {
			next.DisplayMode = a.DisplayMode
		}
		if a.IsDemoSeeded != nil {
			next.IsDemoSeeded = *a.IsDemoSeeded
		}
		return next, nil

	case ImportData:
		taken := make(map[string]bool, len(s.Transactions)+len(a.Transactions))
		for _, t := range s.Transactions {
			taken[t.ID] = true
		}
		for _, t := range a.Transactions {
			if t.ID == "" {
				return s, ErrMissingID
			}
			if taken[t.ID] {
				return s, fmt.Errorf("import %s: %w", t.ID, ErrDuplicateTransaction)
			}
			taken[t.ID] = true
		}

		imported := make(map[string]bool, len(a.Categories))
		for _, c := range a.Categories {
			imported[c.ID] = true
		}
		next := s.Clone()
		next.Transactions = append(next.Transactions, a.Transactions...)
		next.Categories = slices.DeleteFunc(next.Categories, func(c core.Category) bool { return imported[c.ID] })
		next.Categories = append(next.Categories, a.Categories...)
		return next, nil

	case LoadDemoData:
		next := s.Clone()
		next.Transactions = slices.Clone(a.Transactions)
		if next.Transactions == nil {
			next.Transactions = []core.Transaction{}
		}
		next.IsDemoSeeded = true
		return next, nil

	case ClearDemoData:
		next := s.Clone()
		next.Transactions = []core.Transaction{}
		next.IsDemoSeeded = false
		return next, nil

	default:
		return s, fmt.Errorf("unknown action %T", a)
	}
}
