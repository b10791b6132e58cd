package db

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/fold-data/running.report/internal/fold"
	"github.com/fold-data/running.report/internal/reduce"
	"github.com/fold-data/running.report/internal/timeutil"
)

func newTestDB(t *testing.T) (*DB, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	db, err := NewDB(":memory:", clock)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, clock
}

func applyReducer(t *testing.T, name string, values []float64, seed *float64) reduce.Outcome {
	t.Helper()
	out, err := reduce.Apply(name, fold.Values(values), seed)
	require.NoError(t, err)
	return out
}

func TestCreateAndGetRun(t *testing.T) {
	db, clock := newTestDB(t)

	out := applyReducer(t, reduce.Sum, []float64{1, 2, 3}, nil)
	created, err := db.CreateRun(reduce.Sum, out, "test")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, clock.Now().UTC(), created.Created)

	got, err := db.GetRun(created.ID)
	require.NoError(t, err)

	require.Equal(t, reduce.Sum, got.Reducer)
	require.True(t, got.Seeded)
	require.Equal(t, 0.0, got.Seed)
	require.Equal(t, "test", got.Source)
	require.Equal(t, 3, got.Count)
	require.NotNil(t, got.Final)
	require.Equal(t, 6.0, *got.Final)

	wantPoints := []reduce.Point{
		{Index: 0, Input: 1, Acc: 1},
		{Index: 1, Input: 2, Acc: 3},
		{Index: 2, Input: 3, Acc: 6},
	}
	if diff := cmp.Diff(wantPoints, got.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRunEmptyUnseededHasNoFinal(t *testing.T) {
	db, _ := newTestDB(t)

	out := applyReducer(t, reduce.Max, nil, nil)
	created, err := db.CreateRun(reduce.Max, out, "")
	require.NoError(t, err)
	require.Nil(t, created.Final)

	got, err := db.GetRun(created.ID)
	require.NoError(t, err)
	require.Nil(t, got.Final)
	require.Equal(t, 0, got.Count)
	require.Empty(t, got.Points)
}

func TestCreateRunEmptySeededKeepsSeedAsFinal(t *testing.T) {
	db, _ := newTestDB(t)

	seed := 42.0
	out := applyReducer(t, reduce.Sum, nil, &seed)
	created, err := db.CreateRun(reduce.Sum, out, "")
	require.NoError(t, err)
	require.NotNil(t, created.Final)
	require.Equal(t, 42.0, *created.Final)

	got, err := db.GetRun(created.ID)
	require.NoError(t, err)
	require.True(t, got.Seeded)
	require.Equal(t, 42.0, got.Seed)
	require.NotNil(t, got.Final)
	require.Equal(t, 42.0, *got.Final)
}

func TestGetRunNotFound(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.GetRun("no-such-id")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun error = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db, clock := newTestDB(t)

	first, err := db.CreateRun(reduce.Sum, applyReducer(t, reduce.Sum, []float64{1}, nil), "a")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := db.CreateRun(reduce.Max, applyReducer(t, reduce.Max, []float64{5, 2}, nil), "b")
	require.NoError(t, err)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second.ID, runs[0].ID)
	require.Equal(t, first.ID, runs[1].ID)

	// List queries do not load points.
	require.Empty(t, runs[0].Points)
}

func TestListRunsLimit(t *testing.T) {
	db, clock := newTestDB(t)

	for i := 0; i < 5; i++ {
		_, err := db.CreateRun(reduce.Count, applyReducer(t, reduce.Count, []float64{1, 2}, nil), "")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	runs, err := db.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}
