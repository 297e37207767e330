package sheets

import (
	"context"
	"time"

	"moneta/internal/core"
)

// Report is what the export worker writes for one snapshot revision.
type Report struct {
	Key         string
	Revision    uint64
	GeneratedAt time.Time
	Summary     core.Summary
}

// Ports for outbound adapters.
type (
	// ReportWriter replaces the previously exported report with r and
	// returns a reference to where it was written.
	ReportWriter interface {
		WriteReport(ctx context.Context, r Report) (ref string, err error)
	}
)
