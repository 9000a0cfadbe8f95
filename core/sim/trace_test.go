package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetsim/core/metrics"
)

func newTestTrace(t *testing.T) *TraceStore {
	t.Helper()
	ts, err := NewTraceStore(filepath.Join(t.TempDir(), "trace.jsonl"))
	require.NoError(t, err)
	return ts
}

func TestTraceAppendAndQuery(t *testing.T) {
	ts := newTestTrace(t)
	now := time.Now().UTC()
	for tick := 1; tick <= 5; tick++ {
		require.NoError(t, ts.Append(metrics.TickRecord{
			RunID:     "run1",
			Episode:   0,
			Tick:      tick,
			Batteries: []float64{float64(100 - tick)},
			Locations: []int{tick % 4},
			Time:      now,
		}))
	}

	all, err := ts.Query(TraceQuery{RunID: "run1", Episode: -1})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	window, err := ts.Query(TraceQuery{Episode: -1, FromTick: 2, ToTick: 4})
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, 2, window[0].Tick)
	assert.Equal(t, 4, window[2].Tick)
}

func TestTraceQueryFiltersRunAndEpisode(t *testing.T) {
	ts := newTestTrace(t)
	require.NoError(t, ts.Append(metrics.TickRecord{RunID: "a", Episode: 0, Tick: 1}))
	require.NoError(t, ts.Append(metrics.TickRecord{RunID: "a", Episode: 1, Tick: 1}))
	require.NoError(t, ts.Append(metrics.TickRecord{RunID: "b", Episode: 0, Tick: 1}))

	res, err := ts.Query(TraceQuery{RunID: "a", Episode: 1})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].RunID)
	assert.Equal(t, 1, res[0].Episode)
}

func TestTraceSkipsCorruptLines(t *testing.T) {
	ts := newTestTrace(t)
	require.NoError(t, ts.Append(metrics.TickRecord{RunID: "a", Tick: 1}))

	f, err := os.OpenFile(ts.path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, ts.Append(metrics.TickRecord{RunID: "a", Tick: 2}))

	res, err := ts.Query(TraceQuery{Episode: -1})
	require.NoError(t, err)
	assert.Len(t, res, 2)
}
