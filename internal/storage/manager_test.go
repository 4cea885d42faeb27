package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndGet(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save("report.csv", strings.NewReader("a,b,c\n"))
	require.NoError(t, err)
	assert.Equal(t, "report.csv", info.Name)
	assert.Equal(t, int64(6), info.Size)
	assert.True(t, strings.HasSuffix(info.Path, ".csv"))

	got, err := s.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Path, got.Path)

	data, err := os.ReadFile(info.Path)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n", string(data))
}

func TestLocalStore_CreateWritesDirectly(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	w, info, err := s.Create("report.pdf")
	require.NoError(t, err)
	_, err = w.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path, err := s.Path(info.ID)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestLocalStore_ListNewestFirst(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	a, err := s.Save("a.csv", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save("b.csv", strings.NewReader("b"))
	require.NoError(t, err)
	// Force distinct timestamps regardless of clock resolution.
	a.CreatedAt = time.Now().Add(-time.Minute)

	infos, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, b.ID, infos[0].ID)

	infos, err = s.List(1)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestLocalStore_Delete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save("a.csv", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(info.ID))
	assert.NoFileExists(t, info.Path)
	_, err = s.Get(info.ID)
	require.Error(t, err)

	require.Error(t, s.Delete(info.ID))
}
