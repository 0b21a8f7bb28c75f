package cryptoprim

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptFileRoundTrip(t *testing.T) {
	key := testKey(t)

	cases := []int{0, 1, 100, ChunkPayloadSize, ChunkPayloadSize + 1, ChunkPayloadSize*3 + 17}
	for _, size := range cases {
		plaintext := make([]byte, size)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		ciphertext, err := EncryptFile(plaintext, key)
		require.NoError(t, err)

		decrypted, err := DecryptFile(ciphertext, key)
		require.NoError(t, err)
		require.True(t, bytes.Equal(plaintext, decrypted), "size=%d", size)
	}
}

func TestDecryptFileWrongKeyFails(t *testing.T) {
	key := testKey(t)
	other := testKey(t)

	ciphertext, err := EncryptFile([]byte("hello world"), key)
	require.NoError(t, err)

	_, err = DecryptFile(ciphertext, other)
	require.Error(t, err)
}

func TestDecryptRangeMatchesFullDecrypt(t *testing.T) {
	key := testKey(t)

	plaintext := make([]byte, ChunkPayloadSize*3+500)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	ciphertext, err := EncryptFile(plaintext, key)
	require.NoError(t, err)

	full, err := DecryptFile(ciphertext, key)
	require.NoError(t, err)

	offset := int64(ChunkPayloadSize - 100)
	length := int64(300)
	partial, err := DecryptRange(ciphertext, key, offset, length)
	require.NoError(t, err)

	require.True(t, bytes.Equal(full[offset:offset+length], partial))
}

func TestCiphertextSizeRoundTrips(t *testing.T) {
	for _, size := range []int64{0, 1, ChunkPayloadSize, ChunkPayloadSize + 1, ChunkPayloadSize*2 + 42} {
		ct := CiphertextSize(size)
		require.Equal(t, size, PlaintextSize(ct))
	}
}
