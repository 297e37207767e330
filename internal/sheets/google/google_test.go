package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneta/internal/core"
	"moneta/internal/log"
	ports "moneta/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"}, log.Discard())
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected missing credentials error, got: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	cfg := Config{SpreadsheetID: "id", CredentialsFile: filepath.Join(t.TempDir(), "nope.json")}
	_, err := New(context.Background(), cfg, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "read credentials file") {
		t.Errorf("expected read error, got: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := loadCredentials(Config{CredentialsFile: path})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("loadCredentials(file) = %q, %v", got, err)
	}

	got, err = loadCredentials(Config{CredentialsJSON: `{"inline":true}`, CredentialsFile: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Errorf("inline JSON should win, got %q, %v", got, err)
	}
}

func TestA1Quoting(t *testing.T) {
	c := NewWithService(nil, "id", "Bob's Report", log.Discard())
	if got := c.a1("A1"); got != "'Bob''s Report'!A1" {
		t.Errorf("a1() = %q", got)
	}
	if got := NewWithService(nil, "id", "", log.Discard()).a1("B2"); got != "'Report'!B2" {
		t.Errorf("default sheet a1() = %q", got)
	}
}

func TestWriteReport_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Report", logger: log.Discard()}
	if _, err := c.WriteReport(context.Background(), ports.Report{}); err == nil {
		t.Fatal("expected error with nil service")
	}
}

type recordedCall struct {
	path string
	body map[string]any
}

func fakeSheetsServer(t *testing.T) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(b, &body)
		mu.Lock()
		calls = append(calls, recordedCall{path: r.URL.Path, body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","totalUpdatedCells":12}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestWriteReport_AgainstFakeServer(t *testing.T) {
	srv, calls := fakeSheetsServer(t)
	ctx := context.Background()

	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := NewWithService(svc, "sheet-id", "Report", log.Discard())

	summary, _ := core.Summarize([]core.Transaction{
		{ID: "a", Amount: core.MustMoney("50"), Date: "2024-01-03", Category: "food", Type: core.Expense},
	}, core.DefaultCategories())
	ref, err := c.WriteReport(ctx, ports.Report{
		Key:         "expenseTrackerData",
		Revision:    9,
		GeneratedAt: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		Summary:     summary,
	})
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if ref != "'Report'!A1@9" {
		t.Errorf("ref = %q", ref)
	}

	if len(*calls) != 2 {
		t.Fatalf("expected clear + update, got %d calls", len(*calls))
	}
	clearCall, update := (*calls)[0], (*calls)[1]
	if !strings.HasSuffix(clearCall.path, "/v4/spreadsheets/sheet-id/values:batchClear") {
		t.Errorf("clear path = %s", clearCall.path)
	}
	if !strings.HasSuffix(update.path, "/v4/spreadsheets/sheet-id/values:batchUpdate") {
		t.Errorf("update path = %s", update.path)
	}
	if update.body["valueInputOption"] != "RAW" {
		t.Errorf("valueInputOption = %v", update.body["valueInputOption"])
	}
	data, _ := update.body["data"].([]any)
	if len(data) != 3 {
		t.Fatalf("expected 3 value ranges, got %d", len(data))
	}
	monthly := data[1].(map[string]any)
	if monthly["range"] != "'Report'!A4" {
		t.Errorf("monthly range = %v", monthly["range"])
	}
	rows := monthly["values"].([]any)
	if len(rows) != 2 {
		t.Fatalf("monthly rows = %d, want header + 1", len(rows))
	}
	if first := rows[1].([]any)[0]; first != "Jan 2024" {
		t.Errorf("month label = %v", first)
	}
}
