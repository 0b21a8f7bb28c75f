package handles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptovaultfs/cryptovaultfs/internal/cryptoprim"
	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
)

func writeEncryptedFixture(t *testing.T, plaintext []byte, key *masterkey.Key) *os.File {
	t.Helper()
	ciphertext, err := cryptoprim.EncryptFile(plaintext, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contents.c9r")
	require.NoError(t, os.WriteFile(path, ciphertext, 0o600))

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestReaderReadAtWholeFile(t *testing.T) {
	key, err := masterkey.Generate()
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	f := writeEncryptedFixture(t, plaintext, key)

	r := NewReader(f, key, int64(len(plaintext)), nil)
	defer r.Close()

	buf := make([]byte, len(plaintext))
	n, err := r.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(plaintext), n)
	require.Equal(t, plaintext, buf)
}

func TestReaderReadAtPartialOffset(t *testing.T) {
	key, err := masterkey.Generate()
	require.NoError(t, err)

	plaintext := make([]byte, cryptoprim.ChunkPayloadSize*2+50)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}
	f := writeEncryptedFixture(t, plaintext, key)

	r := NewReader(f, key, int64(len(plaintext)), nil)
	defer r.Close()

	buf := make([]byte, 40)
	offset := int64(cryptoprim.ChunkPayloadSize - 10)
	n, err := r.ReadAt(buf, offset)
	require.NoError(t, err)
	require.Equal(t, 40, n)
	require.Equal(t, plaintext[offset:offset+40], buf)
}

func TestReaderReadAtPastEOFReturnsZero(t *testing.T) {
	key, err := masterkey.Generate()
	require.NoError(t, err)

	plaintext := []byte("short")
	f := writeEncryptedFixture(t, plaintext, key)

	r := NewReader(f, key, int64(len(plaintext)), nil)
	defer r.Close()

	buf := make([]byte, 10)
	n, err := r.ReadAt(buf, 100)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestReaderCloseReleasesLocks(t *testing.T) {
	key, err := masterkey.Generate()
	require.NoError(t, err)

	f := writeEncryptedFixture(t, []byte("x"), key)

	released := false
	r := NewReader(f, key, 1, func() { released = true })

	require.NoError(t, r.Close())
	require.True(t, released)

	require.NoError(t, r.Close(), "close must be idempotent")
}
