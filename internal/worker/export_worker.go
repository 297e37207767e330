package worker

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"moneta/internal/amqp"
	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/sheets"
	"moneta/internal/storage"
	"moneta/internal/store"
)

// ExportWorker turns persisted snapshots into reports. It reads the
// snapshot straight from the shared storage, so a notification only has
// to say that something changed.
type ExportWorker struct {
	kv     storage.KV
	key    string
	writer sheets.ReportWriter
	logger *log.Logger
	now    func() time.Time

	mu           sync.Mutex
	lastRevision uint64
	lastDigest   [sha256.Size]byte
	exported     bool
}

func NewExportWorker(kv storage.KV, key string, writer sheets.ReportWriter, logger *log.Logger) *ExportWorker {
	if key == "" {
		key = store.DefaultKey
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		kv:     kv,
		key:    key,
		writer: writer,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// HandleSnapshotMessage processes a single snapshot notification from AMQP.
// Notifications for other keys, or older than the last export, are acked
// without work.
func (w *ExportWorker) HandleSnapshotMessage(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	if msg.Key != w.key {
		w.logger.DebugContext(ctx, "Ignoring notification for other key",
			log.FieldKey, msg.Key)
		return nil
	}

	w.mu.Lock()
	stale := w.exported && msg.Revision != 0 && msg.Revision < w.lastRevision
	w.mu.Unlock()
	if stale {
		w.logger.DebugContext(ctx, "Ignoring stale notification",
			log.FieldRevision, msg.Revision)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing snapshot notification",
		log.FieldKey, msg.Key,
		log.FieldRevision, msg.Revision)
	_, err := w.export(ctx, msg.Revision)
	return err
}

// ExportPending exports the stored snapshot if it changed since the last
// export. This is the backup path for lost notifications.
func (w *ExportWorker) ExportPending(ctx context.Context) (bool, error) {
	w.mu.Lock()
	rev := w.lastRevision
	w.mu.Unlock()
	return w.export(ctx, rev)
}

// Run calls ExportPending once at startup and then every interval until
// ctx is done.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.ExportPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ExportPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", log.FieldError, err)
			}
		}
	}
}

// export writes a report for the stored snapshot unless its bytes match
// the last export. It reports whether a report was written.
func (w *ExportWorker) export(ctx context.Context, revision uint64) (bool, error) {
	b, err := w.kv.Get(ctx, w.key)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.DebugContext(ctx, "No snapshot to export", log.FieldKey, w.key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read snapshot: %w", err)
	}

	digest := sha256.Sum256(b)
	w.mu.Lock()
	unchanged := w.exported && digest == w.lastDigest
	if unchanged && revision > w.lastRevision {
		w.lastRevision = revision
	}
	w.mu.Unlock()
	if unchanged {
		return false, nil
	}

	snap, err := store.DecodeSnapshot(b)
	if err != nil {
		// A corrupt snapshot will not get better by retrying.
		w.logger.ErrorContext(ctx, "Skipping unreadable snapshot",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		return false, nil
	}
	cats := snap.Categories
	if cats == nil {
		cats = core.DefaultCategories()
	}

	summary, skipped := core.Summarize(snap.Transactions, cats)
	for _, sk := range skipped {
		w.logger.WarnContext(ctx, "Skipping transaction in monthly series",
			log.FieldTxID, sk.ID,
			log.FieldTxDate, sk.Date,
			log.FieldError, sk.Err)
	}

	report := sheets.Report{
		Key:         w.key,
		Revision:    revision,
		GeneratedAt: w.now(),
		Summary:     summary,
	}
	ref, err := w.writer.WriteReport(ctx, report)
	if err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}

	w.mu.Lock()
	w.lastDigest = digest
	w.exported = true
	if revision > w.lastRevision {
		w.lastRevision = revision
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Report exported",
		log.FieldOperation, log.OpExport,
		log.FieldRevision, revision,
		log.FieldTxCount, len(snap.Transactions),
		"months", len(summary.Monthly),
		"ref", ref)
	return true, nil
}
