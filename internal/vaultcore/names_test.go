package vaultcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRegularAndShortenedEntry(t *testing.T) {
	require.True(t, IsRegularEntry("abc.c9r"))
	require.False(t, IsRegularEntry("abc.c9s"))
	require.True(t, IsShortenedEntry("abc.c9s"))
	require.False(t, IsShortenedEntry("abc.c9r"))
}
