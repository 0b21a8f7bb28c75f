package vaultcore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCalculateDirectoryStoragePathShape(t *testing.T) {
	hash := func(dirID string) (string, error) {
		return "ABCDEFGH1234567890ABCDEFGH123456", nil
	}

	path, err := CalculateDirectoryStoragePath("some-dir-id", hash)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("d", "AB", "CDEFGH1234567890ABCDEFGH123456"), path)
}

func TestCalculateDirectoryStoragePathShortHashFails(t *testing.T) {
	hash := func(dirID string) (string, error) { return "tooshort", nil }

	_, err := CalculateDirectoryStoragePath("x", hash)
	require.Error(t, err)
}

func TestCalculateDirectoryStoragePathPropagatesHashError(t *testing.T) {
	wantErr := require.Error
	hash := func(dirID string) (string, error) { return "", errBoom }

	_, err := CalculateDirectoryStoragePath("x", hash)
	wantErr(t, err)
}
