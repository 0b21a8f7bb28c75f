package cryptoprim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDirIDDeterministicLength(t *testing.T) {
	key := testKey(t)

	a, err := HashDirID("some-dir-id", key)
	require.NoError(t, err)
	b, err := HashDirID("some-dir-id", key)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestHashDirIDDiffersByInput(t *testing.T) {
	key := testKey(t)

	a, err := HashDirID("dir-a", key)
	require.NoError(t, err)
	b, err := HashDirID("dir-b", key)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestHashDirIDDiffersByKey(t *testing.T) {
	a, err := HashDirID("same-dir-id", testKey(t))
	require.NoError(t, err)
	b, err := HashDirID("same-dir-id", testKey(t))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}
