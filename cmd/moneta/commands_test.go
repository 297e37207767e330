package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDemoAndSummaryCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "demo", "clear")
	require.NoError(t, err, out)

	importFile := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(importFile, []byte(`{
		"transactions": [
			{"description":"Pay","amount":2000,"date":"2024-03-01","category":"salary","type":"income"},
			{"description":"Rent","amount":"750,50","date":"2024-03-02","category":"utilities","type":"expense"}
		]
	}`), 0o644))

	out, err = run(t, "import", importFile)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"transactions": 2`)

	out, err = run(t, "summary")
	require.NoError(t, err, out)
	var summary struct {
		TotalIncome   float64 `json:"totalIncome"`
		TotalExpenses float64 `json:"totalExpenses"`
		NetBalance    float64 `json:"netBalance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary), out)
	assert.Equal(t, 2000.0, summary.TotalIncome)
	assert.Equal(t, 750.5, summary.TotalExpenses)
	assert.Equal(t, 1249.5, summary.NetBalance)
}

func TestModeToggleCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "mode", "toggle")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"dark"`)

	out, err = run(t, "state")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"displayMode": "dark"`)
}

func TestRepairCommand(t *testing.T) {
	dir := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expenseTrackerData.json"),
		[]byte(`{"transactions":[{"description":"a"},{"id":"b","description":"b"}]}`), 0o644))

	out, err := run(t, "repair")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed 1 transactions")
}

func TestImportCommandErrors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read import file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
	_, err = run(t, "import", bad)
	assert.ErrorContains(t, err, "parse import file")
}

func TestInvalidConfigFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("DATA_BACKEND", "redis")
	_, err := run(t, "state")
	assert.Error(t, err)
}
