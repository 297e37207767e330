// Package backend builds the storage, notification and report-export
// plumbing selected by configuration.
package backend

import (
	"context"

	"moneta/internal/sheets"
	"moneta/internal/storage"
	"moneta/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the durable storage and, when AMQP is configured,
// the notifier told about every snapshot written to it.
type BackendResult struct {
	KV       storage.KV
	Notifier store.Notifier
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the storage backend named by config.Type.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateReportWriter returns the Google Sheets writer when a
	// spreadsheet is configured and an in-memory writer otherwise.
	CreateReportWriter(ctx context.Context, config Config) (sheets.ReportWriter, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// file backend
	DataDirectory string
	// sqlite backend
	SQLiteDBPath string

	// optional snapshot notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// report export
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
