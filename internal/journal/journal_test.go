package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiagate/internal/limiter"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndSummarize(t *testing.T) {
	j := openTestJournal(t)

	now := time.Now()
	require.NoError(t, j.Record(now, limiter.FlushStats{
		Records: 4, Coalesced: 16, Failures: 0, Duration: 2 * time.Millisecond,
	}))
	require.NoError(t, j.Record(now.Add(time.Second), limiter.FlushStats{
		Records: 2, Coalesced: 8, Failures: 1, Duration: 4 * time.Millisecond,
	}))

	s, err := j.Summarize(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Flushes)
	assert.Equal(t, int64(6), s.Records)
	assert.Equal(t, int64(24), s.Coalesced)
	assert.Equal(t, int64(1), s.Failures)
	assert.InDelta(t, 3.0, s.MeanBatchSize, 0.01)
	assert.Equal(t, 3*time.Millisecond, s.MeanDuration)
}

func TestSummarizeSince(t *testing.T) {
	j := openTestJournal(t)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, j.Record(old, limiter.FlushStats{Records: 10}))
	require.NoError(t, j.Record(time.Now(), limiter.FlushStats{Records: 3}))

	s, err := j.Summarize(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Flushes)
	assert.Equal(t, int64(3), s.Records)
}

func TestPrune(t *testing.T) {
	j := openTestJournal(t)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, j.Record(old, limiter.FlushStats{Records: 1}))
	require.NoError(t, j.Record(time.Now(), limiter.FlushStats{Records: 1}))

	n, err := j.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s, err := j.Summarize(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Flushes)
}

func TestEmptySummary(t *testing.T) {
	j := openTestJournal(t)
	s, err := j.Summarize(time.Time{})
	require.NoError(t, err)
	assert.Zero(t, s.Flushes)
	assert.Zero(t, s.MeanBatchSize)
}
