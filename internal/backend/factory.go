package backend

import (
	"context"
	"fmt"

	"moneta/internal/amqp"
	"moneta/internal/log"
	"moneta/internal/sheets"
	gsheet "moneta/internal/sheets/google"
	"moneta/internal/sheets/memory"
	"moneta/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

var _ Factory = (*DefaultFactory)(nil)

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend. AMQP is optional: when
// the broker cannot be reached the backend is returned without a notifier.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kv, err := f.openKV(config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{KV: kv, Cleanup: kv.Close}
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications",
				log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Notifier = client
			result.Cleanup = func() error {
				amqpErr := client.Close()
				if err := kv.Close(); err != nil {
					return err
				}
				return amqpErr
			}
		}
	}

	f.logger.InfoContext(ctx, "Initialized storage backend",
		"backend", config.Type.String(),
		"amqp_enabled", result.Notifier != nil)
	return result, nil
}

func (f *DefaultFactory) openKV(config Config) (storage.KV, error) {
	switch config.Type {
	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		f.logger.Info("Opened SQLite storage", "db_path", config.SQLiteDBPath)
		return kv, nil
	case FileBackend:
		kv, err := storage.NewFileKV(config.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		f.logger.Info("Opened file storage", "data_directory", config.DataDirectory)
		return kv, nil
	case MemoryBackend:
		f.logger.Warn("Using in-memory storage, data is lost on exit")
		return storage.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreateReportWriter implements Factory.CreateReportWriter
func (f *DefaultFactory) CreateReportWriter(ctx context.Context, config Config) (sheets.ReportWriter, error) {
	if !config.SheetsEnabled() {
		f.logger.InfoContext(ctx, "No spreadsheet configured, keeping reports in memory")
		return memory.New(), nil
	}

	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsFile: config.GoogleCredentialsFile,
		CredentialsJSON: config.GoogleCredentialsJSON,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets report writer", "sheet", config.GoogleSheetName)
	return cli, nil
}
