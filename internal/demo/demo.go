// Package demo supplies the fixed dataset used to seed a fresh tracker.
package demo

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"moneta/internal/core"
)

//go:embed transactions.yaml
var fixture []byte

type fixtureFile struct {
	Transactions []struct {
		ID          string `yaml:"id"`
		Description string `yaml:"description"`
		Amount      string `yaml:"amount"`
		Date        string `yaml:"date"`
		Category    string `yaml:"category"`
		Type        string `yaml:"type"`
	} `yaml:"transactions"`
}

var (
	once    sync.Once
	parsed  []core.Transaction
	loadErr error
)

// Parse decodes a YAML demo dataset.
func Parse(data []byte) ([]core.Transaction, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode demo dataset: %w", err)
	}

	out := make([]core.Transaction, 0, len(f.Transactions))
	for i, t := range f.Transactions {
		amount, err := core.ParseAmount(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("demo transaction %d amount %q: %w", i, t.Amount, err)
		}
		typ, err := core.ParseTransactionType(t.Type)
		if err != nil {
			return nil, fmt.Errorf("demo transaction %d: %w", i, err)
		}
		if t.ID == "" {
			return nil, fmt.Errorf("demo transaction %d has no id", i)
		}
		out = append(out, core.Transaction{
			ID:          t.ID,
			Description: t.Description,
			Amount:      amount,
			Date:        t.Date,
			Category:    t.Category,
			Type:        typ,
		})
	}
	return out, nil
}

// Transactions returns a fresh copy of the embedded demo dataset.
func Transactions() []core.Transaction {
	once.Do(func() {
		parsed, loadErr = Parse(fixture)
	})
	if loadErr != nil {
		panic(loadErr)
	}
	return append([]core.Transaction(nil), parsed...)
}
