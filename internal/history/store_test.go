package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func run(id string, at time.Time) *models.ReportRun {
	return &models.ReportRun{
		ID:           id,
		CreatedAt:    at,
		ProjectName:  "Warehouse",
		Format:       "csv",
		DeviceCount:  3,
		TotalLoad:    0.5,
		WorstVoltage: 22.1,
		IsValid:      true,
		OutputPath:   "/data/reports/" + id + ".csv",
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := openStore(t)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(run("a", base)))
	require.NoError(t, s.Record(run("b", base.Add(time.Minute))))
	require.NoError(t, s.Record(run("c", base.Add(2*time.Minute))))

	runs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first.
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Equal(t, "Warehouse", runs[0].ProjectName)
	assert.True(t, runs[0].IsValid)
}

func TestStore_RecentDefaultsLimit(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Record(run("a", time.Now())))

	runs, err := s.Recent(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
	require.NoError(t, s.Record(run("a", time.Now())))
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
