package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/storage"
)

// LoadOutcome tells which path Load took.
type LoadOutcome int

const (
	// Restored means a persisted snapshot was loaded.
	Restored LoadOutcome = iota
	// Seeded means no usable snapshot existed and demo data was loaded.
	Seeded
)

func (o LoadOutcome) String() string {
	if o == Seeded {
		return "seeded"
	}
	return "restored"
}

// LoadReport describes what Load did. Cause is set when Seeded because
// the snapshot was unreadable rather than absent.
type LoadReport struct {
	Outcome     LoadOutcome
	RepairedIDs int
	Dropped     []DroppedRecord
	Cause       error
}

// Load reads the persisted snapshot and installs it over the defaults,
// assigning ids to transactions that lack one. Transactions that cannot be
// restored are dropped one by one and listed in the report. When the
// snapshot is absent, cannot be read, or is not a JSON object, the store is
// seeded with demo data instead. Either way the resulting state is persisted. Load never fails.
func (s *Store) Load(ctx context.Context) LoadReport {
	b, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.InfoContext(ctx, "No saved data, loading demo data", log.FieldKey, s.key)
			return s.seed(ctx, nil)
		}
		s.logger.ErrorContext(ctx, "Error reading saved data, loading demo data",
			log.FieldOperation, log.OpLoad,
			log.FieldKey, s.key,
			log.FieldError, err)
		return s.seed(ctx, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		s.logger.InfoContext(ctx, "Saved data is empty, loading demo data", log.FieldKey, s.key)
		return s.seed(ctx, nil)
	}

	snap, dropped, err := decodeSnapshot(b)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error parsing saved data, loading demo data",
			log.FieldOperation, log.OpLoad,
			log.FieldKey, s.key,
			log.FieldError, err)
		return s.seed(ctx, err)
	}

	for _, d := range dropped {
		s.logger.WarnContext(ctx, "Dropping unusable saved transaction",
			log.FieldOperation, log.OpLoad,
			log.FieldTxID, d.ID,
			"index", d.Index,
			log.FieldError, d.Err)
	}

	repaired := 0
	_, err = s.apply(ctx, log.OpLoad, func(cur State) (Action, error) {
		if snap.Transactions != nil {
			snap.Transactions, repaired = s.repairIDs(snap.Transactions)
		}
		return snap, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error applying saved data, loading demo data",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		return s.seed(ctx, err)
	}

	st := s.State()
	s.logger.InfoContext(ctx, "Saved data loaded",
		log.FieldTxCount, len(st.Transactions),
		log.FieldCatCount, len(st.Categories),
		log.FieldDisplayMode, string(st.DisplayMode),
		"repaired_ids", repaired,
		"dropped", len(dropped))
	return LoadReport{Outcome: Restored, RepairedIDs: repaired, Dropped: dropped}
}

func (s *Store) seed(ctx context.Context, cause error) LoadReport {
	s.LoadDemoData(ctx)
	return LoadReport{Outcome: Seeded, Cause: cause}
}

// repairIDs returns a copy of txs where every transaction has a unique,
// non-empty id, and how many ids had to be assigned.
func (s *Store) repairIDs(txs []core.Transaction) ([]core.Transaction, int) {
	out := make([]core.Transaction, len(txs))
	taken := make(map[string]bool, len(txs))
	for _, t := range txs {
		if t.ID != "" {
			taken[t.ID] = true
		}
	}

	seen := make(map[string]bool, len(txs))
	repaired := 0
	for i, t := range txs {
		if t.ID == "" || seen[t.ID] {
			t.ID = s.uniqueID(State{}, taken)
			taken[t.ID] = true
			repaired++
		}
		seen[t.ID] = true
		out[i] = t
	}
	return out, repaired
}

// RepairStorage scans the raw stored snapshot for transactions without an
// id, assigns fresh ids, and writes the document back if anything changed.
// Fields it does not know about are preserved. It works directly on
// storage and does not touch the in-memory state; run it before Load.
// Failures are logged and reported as zero repairs.
func (s *Store) RepairStorage(ctx context.Context) int {
	b, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logRepairError(ctx, "Error reading saved data", err)
		}
		return 0
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		s.logRepairError(ctx, "Error parsing saved data", err)
		return 0
	}
	raw, ok := doc["transactions"]
	if !ok {
		return 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Not an array; nothing this pass can fix.
		return 0
	}

	fixed := 0
	for i, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		if hasID(obj["id"]) {
			continue
		}
		id := s.newID()
		obj["id"], _ = json.Marshal(id)
		patched, err := json.Marshal(obj)
		if err != nil {
			s.logRepairError(ctx, "Error encoding repaired transaction", err)
			return 0
		}
		items[i] = patched
		fixed++
		s.logger.InfoContext(ctx, "Fixed transaction without id",
			log.FieldOperation, log.OpRepair,
			log.FieldTxID, id)
	}
	if fixed == 0 {
		return 0
	}

	if doc["transactions"], err = json.Marshal(items); err != nil {
		s.logRepairError(ctx, "Error encoding repaired transactions", err)
		return 0
	}
	out, err := json.Marshal(doc)
	if err != nil {
		s.logRepairError(ctx, "Error encoding repaired data", err)
		return 0
	}
	if err := s.kv.Set(ctx, s.key, out); err != nil {
		s.logRepairError(ctx, "Error writing repaired data", err)
		return 0
	}
	s.logger.InfoContext(ctx, "Saved data repaired",
		log.FieldOperation, log.OpRepair,
		log.FieldKey, s.key,
		"fixed", fixed)
	return fixed
}

func (s *Store) logRepairError(ctx context.Context, msg string, err error) {
	s.logger.ErrorContext(ctx, msg,
		log.FieldOperation, log.OpRepair,
		log.FieldKey, s.key,
		log.FieldError, err)
}

// hasID treats a missing, null, empty, false or zero id as absent.
func hasID(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch id := v.(type) {
	case nil:
		return false
	case string:
		return id != ""
	case bool:
		return id
	case float64:
		return id != 0
	default:
		return true
	}
}
