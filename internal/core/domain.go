package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Light DisplayMode = "light"
	Dark  DisplayMode = "dark"
)

// DateLayout is the ISO calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// DefaultCategoryID is assigned to transactions created without a category.
const DefaultCategoryID = "other"

// FallbackColor is used for categories that no longer exist.
const FallbackColor = "#888"

type (
	TransactionType string

	DisplayMode string

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Date        string          `json:"date"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// ParseTransactionType maps free text to a TransactionType. Empty input
// yields the expense default.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Expense, nil
	}
	t := TransactionType(s)
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// UnmarshalJSON accepts numeric ids, as written by older versions of the
// tracker, and stores them in their decimal form. Ids of any other JSON
// type decode as empty so the load repair can assign a fresh one.
func (t *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*t = Transaction(aux.plain)
	t.ID = decodeID(aux.ID)
	return nil
}

func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// Normalize checks a transaction that did not come through ParseAmount,
// such as a stored or imported record. An empty type becomes expense.
// Unknown types and negative amounts are rejected.
func (t Transaction) Normalize() (Transaction, error) {
	if t.Type == "" {
		t.Type = Expense
	}
	if !t.Type.Valid() {
		return t, ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return t, ErrInvalidAmount
	}
	return t, nil
}

// Toggle returns the opposite display mode. Unknown values toggle to dark.
func (m DisplayMode) Toggle() DisplayMode {
	if m == Dark {
		return Light
	}
	return Dark
}

// ParseDate accepts ISO calendar dates and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CategoryID derives a category id from its display name: lowercase,
// with every run of whitespace replaced by a single underscore.
func CategoryID(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace)
	return strings.Join(fields, "_")
}

// DefaultCategories returns the built-in categories seeded on first run.
func DefaultCategories() []Category {
	return []Category{
		{ID: "food", Name: "Food", Color: "#FF6B6B"},
		{ID: "transportation", Name: "Transportation", Color: "#4ECDC4"},
		{ID: "entertainment", Name: "Entertainment", Color: "#FFD166"},
		{ID: "utilities", Name: "Utilities", Color: "#6B5B95"},
		{ID: "salary", Name: "Salary", Color: "#88D498"},
		{ID: "freelance", Name: "Freelance", Color: "#F3A712"},
		{ID: "other", Name: "Other", Color: "#A5A58D"},
	}
}
