package masterkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateProducesDistinctKeys(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	require.NotEqual(t, a.EncKey(), b.EncKey())
	require.NotEqual(t, a.MacKey(), b.MacKey())
}

func TestCloneIsIndependentCopy(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	clone, err := k.Clone()
	require.NoError(t, err)
	require.Equal(t, k.EncKey(), clone.EncKey())
	require.Equal(t, k.MacKey(), clone.MacKey())

	k.Destroy()
	require.NotEqual(t, k.EncKey(), clone.EncKey(), "destroying the original must not affect the clone")
}

func TestNewRejectsWrongLengths(t *testing.T) {
	_, err := New(make([]byte, 10), make([]byte, EncKeyLen))
	require.Error(t, err)
}

func TestDeriveKEKDeterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")
	a := DeriveKEK([]byte("password"), salt, 32)
	b := DeriveKEK([]byte("password"), salt, 32)
	require.Equal(t, a, b)
	require.Len(t, a, 32)
}
