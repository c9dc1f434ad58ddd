package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutOpenReplace(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "erp_2024-01-01.csv", strings.NewReader("first")))
	require.NoError(t, s.Put(ctx, "erp_2024-01-01.csv", strings.NewReader("second")))

	rc, err := s.Open(ctx, "erp_2024-01-01.csv")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	ok, err := s.Exists(ctx, "erp_2024-01-01.csv")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorage_ListSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "b.csv", strings.NewReader("b")))
	require.NoError(t, s.Put(ctx, "a.csv", strings.NewReader("a")))
	require.NoError(t, os.WriteFile(filepath.Join(base, tempPrefix+"leftover"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(base, "sub"), 0755))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)

	names, err = s.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStorage_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open(ctx, "nope.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "nope.csv"))

	require.NoError(t, s.Put(ctx, "x.csv", strings.NewReader("x")))
	require.NoError(t, s.Delete(ctx, "x.csv"))
	ok, err := s.Exists(ctx, "x.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_StaysInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(base, "store"))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "../escape.csv", strings.NewReader("x")))

	_, err = os.Stat(filepath.Join(base, "escape.csv"))
	assert.True(t, os.IsNotExist(err), "traversal is clamped to the base directory")
	ok, err := s.Exists(ctx, "escape.csv")
	require.NoError(t, err)
	assert.True(t, ok)
}
