package vaulterrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := New(KindNotFoundFile, "report.docx", "dir-id")
	require.True(t, errors.Is(err, ErrNotFoundFile))
	require.False(t, errors.Is(err, ErrNotFoundDir))
}

func TestWrapPreservesUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := Wrap(KindIO, inner, "file.txt", "")
	require.ErrorIs(t, err, inner)
}

func TestKindOfDefaultsForForeignErrors(t *testing.T) {
	require.Equal(t, KindIO, KindOf(errors.New("some external error")))
	require.Equal(t, KindNotFoundFile, KindOf(New(KindNotFoundFile, "", "")))
}

func TestWithPathAndWithVaultPath(t *testing.T) {
	err := New(KindNotFoundFile, "file.txt", "dir-id")
	err = WithPath(err, "enc/path")
	err = WithVaultPath(err, "/vault/path/file.txt")

	require.Equal(t, "enc/path", err.EncryptedPath)
	require.Equal(t, "/vault/path/file.txt", err.VaultPath)
	require.Contains(t, err.Error(), "enc/path")
}
