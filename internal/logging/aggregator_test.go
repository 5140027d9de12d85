package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorCountsAndFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agg.log")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	agg := NewAggregator(slog.New(slog.NewJSONHandler(f, nil)), 60)
	agg.Record(CompSearch, "query_matched", slog.Int("results", 1))
	agg.Record(CompSearch, "query_matched", slog.Int("results", 4))
	agg.Record(CompSearch, "cache_hit")
	assert.EqualValues(t, 2, agg.Pending(CompSearch, "query_matched"))

	agg.Flush()
	assert.Zero(t, agg.Pending(CompSearch, "query_matched"))
	require.NoError(t, f.Sync())

	records := readRecords(t, path)
	require.Len(t, records, 2)
	// Sorted by event name within the component
	assert.Equal(t, "cache_hit", records[0]["event"])
	assert.Equal(t, "query_matched", records[1]["event"])
	assert.EqualValues(t, 2, records[1]["count"])
	assert.EqualValues(t, 4, records[1]["results"])
}

func TestAggregatorStopIsIdempotent(t *testing.T) {
	agg := NewAggregator(nil, 1)
	agg.Start()
	agg.Record(CompUI, "key")
	agg.Stop()
	agg.Stop()
	assert.Zero(t, agg.Pending(CompUI, "key"))
}
