package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneta/internal/core"
	"moneta/internal/demo"
	"moneta/internal/log"
	"moneta/internal/storage"
)

// SnapshotInfo describes a snapshot that was just written to storage.
type SnapshotInfo struct {
	Key          string
	Revision     uint64
	Transactions int
	Categories   int
	SavedAt      time.Time
}

// Notifier is told about every snapshot written to storage.
type Notifier interface {
	SnapshotSaved(ctx context.Context, info SnapshotInfo) error
}

// Store is the single owner of the tracker state. Mutations run one at a
// time and persist before returning; reads return copies.
type Store struct {
	mu       sync.RWMutex
	state    State
	revision uint64

	kv       storage.KV
	key      string
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	demo     func() []core.Transaction
}

type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithClock sets the clock used for default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the transaction id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithDemoData sets the dataset used for demo seeding.
func WithDemoData(f func() []core.Transaction) Option {
	return func(s *Store) { s.demo = f }
}

// New returns a store holding DefaultState. Call Load to read the
// persisted snapshot.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		state:  DefaultState(),
		kv:     kv,
		key:    DefaultKey,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentStore),
		now:    time.Now,
		newID:  uuid.NewString,
		demo:   demo.Transactions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key snapshots are written under.
func (s *Store) Key() string {
	return s.key
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Revision increases by one with every applied transition.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Transaction looks up a transaction by id.
func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.transactionIndex(id); i >= 0 {
		return s.state.Transactions[i], true
	}
	return core.Transaction{}, false
}

// Snapshot returns a copy of the current state together with its revision.
func (s *Store) Snapshot() (State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), s.revision
}

// Summary computes totals, the category breakdown and the monthly series
// for the current transactions.
func (s *Store) Summary(ctx context.Context) core.Summary {
	return s.SummaryOf(ctx, s.State())
}

// SummaryOf computes the summary of st. Transactions with malformed dates
// are logged and left out of the monthly series.
func (s *Store) SummaryOf(ctx context.Context, st State) core.Summary {
	summary, skipped := core.Summarize(st.Transactions, st.Categories)
	for _, sk := range skipped {
		s.logger.WarnContext(ctx, "Skipping transaction in monthly series",
			log.FieldTxID, sk.ID,
			log.FieldTxDate, sk.Date,
			log.FieldError, sk.Err)
	}
	return summary
}

// TransactionInput carries caller supplied fields for add and edit. ID is
// ignored on add and required on edit.
type TransactionInput struct {
	ID          string         `json:"id,omitempty"`
	Description string         `json:"description"`
	Amount      core.RawAmount `json:"amount"`
	Date        string         `json:"date,omitempty"`
	Category    string         `json:"category,omitempty"`
	Type        string         `json:"type,omitempty"`
}

// CategoryInput carries caller supplied fields for a new category.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ImportPayload is the document accepted by ImportData.
type ImportPayload struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
}

// ImportSummary reports what an import added.
type ImportSummary struct {
	Transactions int `json:"transactions"`
	Categories   int `json:"categories"`
	ReassignedID int `json:"reassignedIds"`
	Skipped      int `json:"skipped"`
}

// AddTransaction records a new transaction under a generated id. Date
// defaults to today, category to "other" and type to expense.
func (s *Store) AddTransaction(ctx context.Context, in TransactionInput) Result[core.Transaction] {
	tx, err := s.coerce(in)
	if err != nil {
		s.logRejected(ctx, log.OpAddTransaction, err)
		return rejected[core.Transaction](err)
	}
	if tx.Date == "" {
		tx.Date = core.FormatDate(s.now())
	}
	if tx.Category == "" {
		tx.Category = core.DefaultCategoryID
	}

	_, err = s.apply(ctx, log.OpAddTransaction, func(cur State) (Action, error) {
		tx.ID = s.uniqueID(cur, nil)
		return AddTransaction{Transaction: tx}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpAddTransaction, err)
		return rejected[core.Transaction](err)
	}
	return applied(tx)
}

// DeleteTransaction removes the transaction with id. Unknown ids are a NoOp.
func (s *Store) DeleteTransaction(ctx context.Context, id string) Result[string] {
	_, err := s.apply(ctx, log.OpDeleteTransaction, func(State) (Action, error) {
		return DeleteTransaction{ID: id}, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Transaction not deleted",
			log.FieldOperation, log.OpDeleteTransaction,
			log.FieldTxID, id,
			log.FieldError, err)
		return noop[string](err)
	}
	return applied(id)
}

// EditTransaction replaces the stored transaction with the same id. The
// amount is coerced again; an empty date, category or type keeps the
// stored value.
func (s *Store) EditTransaction(ctx context.Context, in TransactionInput) Result[core.Transaction] {
	if strings.TrimSpace(in.ID) == "" {
		s.logRejected(ctx, log.OpEditTransaction, ErrMissingID)
		return rejected[core.Transaction](ErrMissingID)
	}
	tx, err := s.coerce(in)
	if err != nil {
		s.logRejected(ctx, log.OpEditTransaction, err)
		return rejected[core.Transaction](err)
	}
	if strings.TrimSpace(in.Type) == "" {
		tx.Type = ""
	}
	tx.ID = strings.TrimSpace(in.ID)

	next, err := s.apply(ctx, log.OpEditTransaction, func(State) (Action, error) {
		return EditTransaction{Transaction: tx}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpEditTransaction, err)
		return rejected[core.Transaction](err)
	}
	return applied(next.Transactions[next.transactionIndex(tx.ID)])
}

// AddCategory appends a category whose id is derived from its name.
func (s *Store) AddCategory(ctx context.Context, in CategoryInput) Result[core.Category] {
	c := core.Category{
		ID:    core.CategoryID(in.Name),
		Name:  strings.TrimSpace(in.Name),
		Color: strings.TrimSpace(in.Color),
	}
	if c.Color == "" {
		c.Color = core.FallbackColor
	}
	_, err := s.apply(ctx, log.OpAddCategory, func(State) (Action, error) {
		return AddCategory{Category: c}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpAddCategory, err)
		return rejected[core.Category](err)
	}
	return applied(c)
}

// DeleteCategory removes the category with id. Transactions referencing
// it keep the id and fall back to a neutral display in the breakdown.
func (s *Store) DeleteCategory(ctx context.Context, id string) Result[string] {
	_, err := s.apply(ctx, log.OpDeleteCategory, func(State) (Action, error) {
		return DeleteCategory{ID: id}, nil
	})
	if err != nil {
		s.logger.DebugContext(ctx, "Category not deleted",
			log.FieldCategoryID, id,
			log.FieldError, err)
		return noop[string](err)
	}
	return applied(id)
}

// ImportData appends the imported transactions and merges categories by
// id, imported entries replacing existing ones. Transactions without an id,
// or whose id is already taken, get a fresh one. Transactions with an
// unknown type or a negative amount are skipped and counted.
func (s *Store) ImportData(ctx context.Context, p ImportPayload) Result[ImportSummary] {
	var summary ImportSummary
	cats := mergeImportedCategories(p.Categories)

	_, err := s.apply(ctx, log.OpImport, func(cur State) (Action, error) {
		taken := make(map[string]bool, len(p.Transactions))
		txs := make([]core.Transaction, 0, len(p.Transactions))
		for _, t := range p.Transactions {
			t, err := t.Normalize()
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping imported transaction",
					log.FieldTxID, t.ID,
					log.FieldError, err)
				summary.Skipped++
				continue
			}
			if t.ID == "" || taken[t.ID] || cur.transactionIndex(t.ID) >= 0 {
				t.ID = s.uniqueID(cur, taken)
				summary.ReassignedID++
			}
			taken[t.ID] = true
			txs = append(txs, t)
		}
		summary.Transactions = len(txs)
		summary.Categories = len(cats)
		return ImportData{Transactions: txs, Categories: cats}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpImport, err)
		return rejected[ImportSummary](err)
	}
	s.logger.InfoContext(ctx, "Data imported",
		log.FieldTxCount, summary.Transactions,
		log.FieldCatCount, summary.Categories,
		"reassigned_ids", summary.ReassignedID,
		"skipped", summary.Skipped)
	return applied(summary)
}

// LoadDemoData replaces all transactions with the demo dataset.
func (s *Store) LoadDemoData(ctx context.Context) Result[int] {
	txs := s.demo()
	_, err := s.apply(ctx, log.OpLoadDemo, func(State) (Action, error) {
		return LoadDemoData{Transactions: txs}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpLoadDemo, err)
		return rejected[int](err)
	}
	s.logger.InfoContext(ctx, "Demo data loaded", log.FieldTxCount, len(txs))
	return applied(len(txs))
}

// ClearDemoData removes every transaction and clears the demo flag.
func (s *Store) ClearDemoData(ctx context.Context) Result[int] {
	var removed int
	_, err := s.apply(ctx, log.OpClearDemo, func(cur State) (Action, error) {
		removed = len(cur.Transactions)
		return ClearDemoData{}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpClearDemo, err)
		return rejected[int](err)
	}
	s.logger.InfoContext(ctx, "Demo data cleared", log.FieldTxCount, removed)
	return applied(removed)
}

// ToggleDisplayMode flips between light and dark.
func (s *Store) ToggleDisplayMode(ctx context.Context) Result[core.DisplayMode] {
	var mode core.DisplayMode
	_, err := s.apply(ctx, log.OpToggleMode, func(cur State) (Action, error) {
		mode = cur.DisplayMode.Toggle()
		return ToggleDisplayMode{}, nil
	})
	if err != nil {
		s.logRejected(ctx, log.OpToggleMode, err)
		return rejected[core.DisplayMode](err)
	}
	return applied(mode)
}

// apply builds an action from the current state, reduces it, and persists
// the result. The whole sequence holds the write lock.
func (s *Store) apply(ctx context.Context, op string, build func(cur State) (Action, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := build(s.state)
	if err != nil {
		return s.state, err
	}
	next, err := Reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.revision++

	s.logger.DebugContext(ctx, "Transition applied",
		log.FieldOperation, op,
		log.FieldRevision, s.revision)
	s.persistLocked(ctx)
	return next, nil
}

// persistLocked writes the snapshot. Failures are logged and never undo
// the in-memory transition.
func (s *Store) persistLocked(ctx context.Context) {
	b, err := EncodeSnapshot(s.state)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode snapshot",
			log.FieldOperation, log.OpPersist,
			log.FieldError, err)
		return
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.FieldOperation, log.OpPersist,
			log.FieldKey, s.key,
			log.FieldRevision, s.revision,
			log.FieldError, err)
		return
	}

	if s.notifier == nil {
		return
	}
	info := SnapshotInfo{
		Key:          s.key,
		Revision:     s.revision,
		Transactions: len(s.state.Transactions),
		Categories:   len(s.state.Categories),
		SavedAt:      s.now(),
	}
	if err := s.notifier.SnapshotSaved(ctx, info); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish snapshot notification",
			log.FieldOperation, log.OpNotify,
			log.FieldRevision, s.revision,
			log.FieldError, err)
	}
}

func (s *Store) coerce(in TransactionInput) (core.Transaction, error) {
	amount, err := in.Amount.Coerce()
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	date := strings.TrimSpace(in.Date)
	if date != "" {
		if _, err := core.ParseDate(date); err != nil {
			return core.Transaction{}, err
		}
	}
	return core.Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Date:        date,
		Category:    strings.TrimSpace(in.Category),
		Type:        typ,
	}, nil
}

// uniqueID generates ids until one is free in cur and in extra.
func (s *Store) uniqueID(cur State, extra map[string]bool) string {
	for {
		id := s.newID()
		if id != "" && !extra[id] && cur.transactionIndex(id) < 0 {
			return id
		}
	}
}

func (s *Store) logRejected(ctx context.Context, op string, err error) {
	s.logger.WarnContext(ctx, "Mutation rejected",
		log.FieldOperation, op,
		log.FieldOutcome, Rejected.String(),
		log.FieldError, err)
}

// mergeImportedCategories derives missing ids and keeps the last entry
// for ids that appear more than once.
func mergeImportedCategories(in []core.Category) []core.Category {
	out := make([]core.Category, 0, len(in))
	pos := make(map[string]int, len(in))
	for _, c := range in {
		if c.ID == "" {
			c.ID = core.CategoryID(c.Name)
		}
		if c.ID == "" {
			continue
		}
		if i, ok := pos[c.ID]; ok {
			out[i] = c
			continue
		}
		pos[c.ID] = len(out)
		out = append(out, c)
	}
	return out
}
