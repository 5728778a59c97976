package record

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwanda/healthsim/internal/population"
)

var day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	_, err = s.StartRun(42)
	require.NoError(t, err)
	return s
}

func TestStartRunAssignsID(t *testing.T) {
	s := openTestStore(t)
	assert.NotEmpty(t, s.RunID())
}

func TestRecordFlushAndQuery(t *testing.T) {
	s := openTestStore(t)

	s.Record(day0, "death", 7, map[string]any{"cause": "eclampsia"})
	s.Record(day0.AddDate(0, 0, 1), "live_birth", 8, map[string]any{"mother": 7})
	s.Record(day0.AddDate(0, 0, 1), "live_birth", 9, map[string]any{"mother": 7})

	n, err := s.CountByKey("live_birth")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountByKey("death")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "live_birth", recent[0].Key, "newest first")
	assert.Equal(t, 9, recent[0].Person)
	assert.Contains(t, recent[0].Data, "mother")
}

func TestRunsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	run1, err := s.StartRun(1)
	require.NoError(t, err)
	s.Record(day0, "death", 1, nil)

	// A second run starts while run 1 still has this record buffered; it
	// must keep its attribution and never leak into run 2.
	_, err = s.StartRun(2)
	require.NoError(t, err)
	n, err := s.CountByKey("death")
	require.NoError(t, err)
	assert.Zero(t, n)

	var n1 int
	require.NoError(t, s.conn.Get(&n1,
		"SELECT COUNT(*) FROM records WHERE run_id = ? AND key = ?", run1, "death"))
	assert.Equal(t, 1, n1)
}

func TestSavePersons(t *testing.T) {
	s := openTestStore(t)

	pop := population.NewStore()
	pop.Bootstrap(10, rand.New(rand.NewSource(1)), day0)
	require.NoError(t, pop.RecordDeath(3, "eclampsia", day0))

	require.NoError(t, s.SavePersons(pop))

	var alive int
	require.NoError(t, s.conn.Get(&alive,
		"SELECT COUNT(*) FROM persons WHERE run_id = ? AND alive = 1", s.RunID()))
	assert.Equal(t, 9, alive)

	var cause string
	require.NoError(t, s.conn.Get(&cause,
		"SELECT cause_of_death FROM persons WHERE run_id = ? AND id = 3", s.RunID()))
	assert.Equal(t, "eclampsia", cause)

	// Saving again replaces rather than duplicates.
	require.NoError(t, s.SavePersons(pop))
	var total int
	require.NoError(t, s.conn.Get(&total,
		"SELECT COUNT(*) FROM persons WHERE run_id = ?", s.RunID()))
	assert.Equal(t, 10, total)
}

func TestFinishRun(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.FinishRun(365))

	var days int
	require.NoError(t, s.conn.Get(&days,
		"SELECT days FROM runs WHERE run_id = ?", s.RunID()))
	assert.Equal(t, 365, days)
}
