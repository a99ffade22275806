package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('orders','signals','events')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["orders"])
	assert.True(t, found["signals"])
	assert.True(t, found["events"])
}

func TestSQLiteRecordAndListOrders(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := OrderRecord{
		ID: "01A", Time: base, Instrument: "EUR_USD", Side: "buy",
		Lots: 0.1, Price: 1.0851, OwnerTag: 777, Reason: "signal-entry",
	}
	second := OrderRecord{
		ID: "01B", Time: base.Add(time.Minute), Instrument: "EUR_USD", Side: "close",
		Lots: 0.1, Price: 1.0861, OwnerTag: 777, Reason: "take-profit",
	}
	require.NoError(t, j.RecordOrder(first))
	require.NoError(t, j.RecordOrder(second))

	orders, err := j.ListRecentOrders(10)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Newest first.
	assert.Equal(t, "01B", orders[0].ID)
	assert.Equal(t, "close", orders[0].Side)
	assert.Equal(t, "take-profit", orders[0].Reason)
	assert.Equal(t, "01A", orders[1].ID)
	assert.InDelta(t, 1.0851, orders[1].Price, 1e-9)
	assert.Equal(t, int64(777), orders[1].OwnerTag)
}

func TestSQLiteRecordSignalAndEvent(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordSignal(SignalRecord{
		Time:          time.Now().UTC(),
		ZScore:        -2.5,
		Regime:        true,
		MLProbability: 0.8,
		Kalman:        true,
		Correlation:   0.7,
	}))
	require.NoError(t, j.RecordEvent(EventRecord{
		Time:   time.Now().UTC(),
		Kind:   "kill-switch",
		Detail: "take-profit net_pl=2000.00",
	}))
}
