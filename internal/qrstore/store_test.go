package qrstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreateWritesAndCaches(t *testing.T) {
	s, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	path, png, err := s.GetOrCreate("voucher", "DCT-2024-001", "payload")
	require.NoError(t, err)
	require.Nil(t, png)
	require.Equal(t, "voucher_DCT-2024-001.png", filepath.Base(path))

	first, err := os.Stat(path)
	require.NoError(t, err)

	// Within the TTL the same file is served without a rewrite.
	path2, _, err := s.GetOrCreate("voucher", "DCT-2024-001", "payload")
	require.NoError(t, err)
	require.Equal(t, path, path2)
	second, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, first.ModTime(), second.ModTime())
}

func TestGetOrCreateRerendersStaleEntries(t *testing.T) {
	s, err := New(t.TempDir(), time.Minute)
	require.NoError(t, err)

	path, _, err := s.GetOrCreate("voucher", "REF1", "payload")
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	_, _, err = s.GetOrCreate("voucher", "REF1", "payload")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.ModTime().After(old), "stale entry was not re-rendered")
}

func TestGetOrCreateSanitizesReference(t *testing.T) {
	s, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	path, _, err := s.GetOrCreate("mpv", "REF/2024 01", "payload")
	require.NoError(t, err)
	require.Equal(t, "mpv_REF_2024_01.png", filepath.Base(path))
}

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, time.Minute)
	require.NoError(t, err)

	stale, _, err := s.GetOrCreate("voucher", "OLD", "p")
	require.NoError(t, err)
	fresh, _, err := s.GetOrCreate("voucher", "NEW", "p")
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := s.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestZeroTTLAlwaysRerenders(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	path, _, err := s.GetOrCreate("voucher", "REF", "p")
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	_, _, err = s.GetOrCreate("voucher", "REF", "p")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.ModTime().After(old))
}
