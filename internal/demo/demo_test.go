package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core"
)

func TestTransactionsFixture(t *testing.T) {
	txs := Transactions()
	require.NotEmpty(t, txs)

	seen := map[string]bool{}
	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
		assert.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
		assert.True(t, tx.Type.Valid())
		_, err := core.ParseDate(tx.Date)
		assert.NoError(t, err, tx.ID)
	}
}

func TestTransactionsReturnsCopy(t *testing.T) {
	a := Transactions()
	a[0].Description = "changed"
	b := Transactions()
	assert.NotEqual(t, "changed", b[0].Description)
}

func TestParseRejectsBadAmounts(t *testing.T) {
	_, err := Parse([]byte("transactions:\n  - id: x\n    amount: \"-3\"\n    type: expense\n"))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = Parse([]byte("transactions:\n  - amount: \"3\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("transactions: [oops"))
	assert.Error(t, err)
}
