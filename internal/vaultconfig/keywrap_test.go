package vaultconfig

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyWrapRoundTrip(t *testing.T) {
	kek := make([]byte, 32)
	_, err := rand.Read(kek)
	require.NoError(t, err)

	plaintext := make([]byte, 32)
	_, err = rand.Read(plaintext)
	require.NoError(t, err)

	wrapped, err := keyWrap(kek, plaintext)
	require.NoError(t, err)
	require.Len(t, wrapped, 40)

	unwrapped, err := keyUnwrap(kek, wrapped)
	require.NoError(t, err)
	require.Equal(t, plaintext, unwrapped)
}

func TestKeyUnwrapWrongKekFails(t *testing.T) {
	kek := make([]byte, 32)
	_, err := rand.Read(kek)
	require.NoError(t, err)
	other := make([]byte, 32)
	_, err = rand.Read(other)
	require.NoError(t, err)

	plaintext := make([]byte, 32)
	_, err = rand.Read(plaintext)
	require.NoError(t, err)

	wrapped, err := keyWrap(kek, plaintext)
	require.NoError(t, err)

	_, err = keyUnwrap(other, wrapped)
	require.Error(t, err)
}
