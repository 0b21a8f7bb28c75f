package vaultcore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateLookupPathsUnderThreshold(t *testing.T) {
	hash := func(name string) (string, error) { return "SHOULDNOTBECALLED", nil }

	lp, err := CalculateLookupPaths("/vault/d/AB/cdef", "c29tZS1lbmNyeXB0ZWQtbmFtZQ", 220, EntryFile, hash)
	require.NoError(t, err)
	require.False(t, lp.IsShortened)
	require.Equal(t, filepath.Join("/vault/d/AB/cdef", "c29tZS1lbmNyeXB0ZWQtbmFtZQ"+RegularSuffix), lp.EntryPath)
	require.Equal(t, lp.EntryPath, lp.ContentPath)
}

func TestCalculateLookupPathsOverThresholdShortensDirectory(t *testing.T) {
	longName := strings.Repeat("a", 300)
	hash := func(name string) (string, error) { return "HASHEDSHORTNAME", nil }

	lp, err := CalculateLookupPaths("/vault/d/AB/cdef", longName, 220, EntryDirectory, hash)
	require.NoError(t, err)
	require.True(t, lp.IsShortened)
	require.Equal(t, filepath.Join("/vault/d/AB/cdef", "HASHEDSHORTNAME"+ShortenedSuffix), lp.EntryPath)
	require.Equal(t, filepath.Join(lp.EntryPath, DirContentName), lp.ContentPath)
}

func TestCalculateLookupPathsContentNameByKind(t *testing.T) {
	hash := func(name string) (string, error) { return "H", nil }

	file, err := CalculateLookupPaths("/v", strings.Repeat("a", 300), 10, EntryFile, hash)
	require.NoError(t, err)
	require.Equal(t, FileContentName, filepath.Base(file.ContentPath))

	dir, err := CalculateLookupPaths("/v", strings.Repeat("a", 300), 10, EntryDirectory, hash)
	require.NoError(t, err)
	require.Equal(t, DirContentName, filepath.Base(dir.ContentPath))

	sym, err := CalculateLookupPaths("/v", strings.Repeat("a", 300), 10, EntrySymlink, hash)
	require.NoError(t, err)
	require.Equal(t, SymlinkContentName, filepath.Base(sym.ContentPath))
}

func TestShortNamePathAndDirIDBackupPath(t *testing.T) {
	require.Equal(t, filepath.Join("/entry", ShortNameFile), ShortNamePath("/entry"))
	require.Equal(t, filepath.Join("/storage", DirIDBackupName), DirIDBackupPath("/storage"))
}
