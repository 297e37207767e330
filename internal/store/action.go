package store

import "moneta/internal/core"

// Action is a state transition request. The set of actions is closed:
// only the types in this file implement it.
type Action interface {
	action()
}

type (
	// AddTransaction appends a transaction that already carries its id.
	AddTransaction struct {
		Transaction core.Transaction
	}

	// DeleteTransaction removes the transaction with ID.
	DeleteTransaction struct {
		ID string
	}

	// EditTransaction replaces the transaction with the same id. Empty
	// Date, Category and Type keep the stored values.
	EditTransaction struct {
		Transaction core.Transaction
	}

	AddCategory struct {
		Category core.Category
	}

	DeleteCategory struct {
		ID string
	}

	ToggleDisplayMode struct{}

	// LoadSnapshot overlays persisted data on the current state. Nil
	// slices, an empty DisplayMode and a nil IsDemoSeeded keep the
	// current values.
	LoadSnapshot struct {
		Transactions []core.Transaction
		Categories   []core.Category
		DisplayMode  core.DisplayMode
		IsDemoSeeded *bool
	}

	// ImportData appends transactions and merges categories by id.
	ImportData struct {
		Transactions []core.Transaction
		Categories   []core.Category
	}

	// LoadDemoData replaces all transactions with the demo dataset.
	LoadDemoData struct {
		Transactions []core.Transaction
	}

	ClearDemoData struct{}
)

func (AddTransaction) action()    {}
func (DeleteTransaction) action() {}
func (EditTransaction) action()   {}
func (AddCategory) action()       {}
func (DeleteCategory) action()    {}
func (ToggleDisplayMode) action() {}
func (LoadSnapshot) action()      {}
func (ImportData) action()        {}
func (LoadDemoData) action()      {}
func (ClearDemoData) action()     {}
