// Package store owns the tracker state. Every change goes through Reduce,
// and the Store persists a snapshot after each accepted transition.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"moneta/internal/core"
)

// DefaultKey is the storage key the snapshot is written under.
const DefaultKey = "expenseTrackerData"

// State is the complete in-memory aggregate.
type State struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	DisplayMode  core.DisplayMode   `json:"displayMode"`
	IsDemoSeeded bool               `json:"isDemoSeeded"`
}

// DefaultState is the state before anything has been loaded.
func DefaultState() State {
	return State{
		Transactions: []core.Transaction{},
		Categories:   core.DefaultCategories(),
		DisplayMode:  core.Light,
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	out := s
	out.Transactions = slices.Clone(s.Transactions)
	out.Categories = slices.Clone(s.Categories)
	if out.Transactions == nil {
		out.Transactions = []core.Transaction{}
	}
	if out.Categories == nil {
		out.Categories = []core.Category{}
	}
	return out
}

func (s State) transactionIndex(id string) int {
	return slices.IndexFunc(s.Transactions, func(t core.Transaction) bool { return t.ID == id })
}

func (s State) categoryIndex(id string) int {
	return slices.IndexFunc(s.Categories, func(c core.Category) bool { return c.ID == id })
}

// EncodeSnapshot serializes the persisted subset of s.
func EncodeSnapshot(s State) ([]byte, error) {
	b, err := json.Marshal(s.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// persistedSnapshot is the on-disk shape, including keys written by older
// versions of the tracker. Transactions are decoded one at a time so a
// single bad record does not make the whole snapshot unusable.
type persistedSnapshot struct {
	Transactions []json.RawMessage `json:"transactions"`
	Categories   []core.Category   `json:"categories"`
	DisplayMode  *core.DisplayMode `json:"displayMode"`
	IsDemoSeeded *bool             `json:"isDemoSeeded"`

	LegacyDarkMode   *bool `json:"darkMode"`
	LegacyIsDemoData *bool `json:"isDemoData"`
}

// ErrSnapshotNotObject is returned for stored documents that are valid
// JSON but not an object, such as null or an array.
var ErrSnapshotNotObject = errors.New("snapshot is not a JSON object")

var errTransactionNotObject = errors.New("transaction is not a JSON object")

// DroppedRecord is a stored transaction that could not be restored.
type DroppedRecord struct {
	Index int
	ID    string
	Err   error
}

// DecodeSnapshot parses stored bytes into a LoadSnapshot action. Fields the
// snapshot does not mention are left empty so loading keeps the defaults.
// Unusable transactions are left out; see decodeSnapshot.
func DecodeSnapshot(b []byte) (LoadSnapshot, error) {
	snap, _, err := decodeSnapshot(b)
	return snap, err
}

func decodeSnapshot(b []byte) (LoadSnapshot, []DroppedRecord, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		if !json.Valid(b) {
			return LoadSnapshot{}, nil, fmt.Errorf("decode snapshot: invalid JSON")
		}
		return LoadSnapshot{}, nil, fmt.Errorf("decode snapshot: %w", ErrSnapshotNotObject)
	}
	var p persistedSnapshot
	if err := json.Unmarshal(b, &p); err != nil {
		return LoadSnapshot{}, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	out := LoadSnapshot{Categories: p.Categories}
	var dropped []DroppedRecord
	if p.Transactions != nil {
		out.Transactions = make([]core.Transaction, 0, len(p.Transactions))
		for i, raw := range p.Transactions {
			var tx core.Transaction
			err := errTransactionNotObject
			if raw = bytes.TrimSpace(raw); len(raw) > 0 && raw[0] == '{' {
				err = json.Unmarshal(raw, &tx)
			}
			if err == nil {
				tx, err = tx.Normalize()
			}
			if err != nil {
				dropped = append(dropped, DroppedRecord{Index: i, ID: tx.ID, Err: err})
				continue
			}
			out.Transactions = append(out.Transactions, tx)
		}
	}

	switch {
	case p.DisplayMode != nil && (*p.DisplayMode == core.Light || *p.DisplayMode == core.Dark):
		out.DisplayMode = *p.DisplayMode
	case p.LegacyDarkMode != nil && *p.LegacyDarkMode:
		out.DisplayMode = core.Dark
	case p.LegacyDarkMode != nil:
		out.DisplayMode = core.Light
	}
	switch {
	case p.IsDemoSeeded != nil:
		out.IsDemoSeeded = p.IsDemoSeeded
	case p.LegacyIsDemoData != nil:
		out.IsDemoSeeded = p.LegacyIsDemoData
	}
	return out, dropped, nil
}
