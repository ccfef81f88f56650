package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseTS(t *testing.T, raw string) time.Time {
	t.Helper()
	tt, err := parseTimestamp(raw)
	require.NoError(t, err)
	return tt
}

func TestParseTimestampNormalizesFractionalSeparator(t *testing.T) {
	tt := mustParseTS(t, "2024.01.01-00:00:00:500000")
	assert.Equal(t, 2024, tt.Year())
	assert.Equal(t, 500000000, tt.Nanosecond())
}

func TestFormatTimestampRoundTrips(t *testing.T) {
	tt := mustParseTS(t, "2024.03.15-12:30:45:123000")
	formatted := formatTimestamp(tt)
	reparsed, err := parseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, tt.Equal(reparsed))
}

func minuteObs(n int, cpu float64) Observation {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Observation{Time: base.Add(time.Duration(n) * time.Minute), CPU: cpu}
}

func TestTraceNewTraceSortsAndDedupes(t *testing.T) {
	tr := NewTrace([]Observation{
		minuteObs(2, 1),
		minuteObs(0, 2),
		minuteObs(1, 3),
		minuteObs(0, 99), // duplicate timestamp, last write wins
	})
	require.Equal(t, 3, tr.Len())
	assert.Equal(t, 99.0, tr.At(0).CPU)
	assert.Equal(t, 3.0, tr.At(1).CPU)
	assert.Equal(t, 1.0, tr.At(2).CPU)
}

func TestTraceRangeIsInclusiveBothEnds(t *testing.T) {
	tr := NewTrace([]Observation{minuteObs(0, 1), minuteObs(1, 2), minuteObs(2, 3), minuteObs(3, 4)})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lo, hi := tr.Range(base.Add(time.Minute), base.Add(2*time.Minute))
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi) // exclusive upper bound on index, inclusive on value
}

func TestTraceClampAboveMutatesInPlace(t *testing.T) {
	tr := NewTrace([]Observation{minuteObs(0, 5), minuteObs(1, 10), minuteObs(2, 3)})
	tr.ClampAbove(0, 3, 4)
	assert.Equal(t, 4.0, tr.At(0).CPU)
	assert.Equal(t, 4.0, tr.At(1).CPU)
	assert.Equal(t, 3.0, tr.At(2).CPU) // below limit, untouched

	// The mutation persists for subsequent reads of the same trace.
	assert.Equal(t, 4.0, tr.Slice(0, 1)[0].CPU)
}

func TestTraceCloneIsIndependent(t *testing.T) {
	tr := NewTrace([]Observation{minuteObs(0, 5)})
	clone := tr.Clone()
	clone.ClampAbove(0, 1, 1)
	assert.Equal(t, 5.0, tr.At(0).CPU)
	assert.Equal(t, 1.0, clone.At(0).CPU)
}

func TestTraceValueAt(t *testing.T) {
	tr := NewTrace([]Observation{minuteObs(0, 1), minuteObs(5, 2)})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := tr.ValueAt(base.Add(-time.Minute))
	assert.False(t, ok)

	v, ok := tr.ValueAt(base.Add(3 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 1.0, v) // latest observation at or before t
}
