package handles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteBufferWriteAtExtends(t *testing.T) {
	w := NewWriteBuffer(nil)
	n, err := w.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.True(t, w.Dirty())
	require.Equal(t, int64(5), w.Size())

	buf := make([]byte, 5)
	_, err = w.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))
}

func TestWriteBufferWriteAtGapZeroFills(t *testing.T) {
	w := NewWriteBuffer(nil)
	_, err := w.WriteAt([]byte("x"), 4)
	require.NoError(t, err)
	require.Equal(t, int64(5), w.Size())
	require.Equal(t, []byte{0, 0, 0, 0, 'x'}, w.Bytes())
}

func TestWriteBufferTruncateGrowAndShrink(t *testing.T) {
	w := NewWriteBuffer([]byte("hello world"))
	require.NoError(t, w.Truncate(5))
	require.Equal(t, "hello", string(w.Bytes()))

	require.NoError(t, w.Truncate(8))
	require.Len(t, w.Bytes(), 8)
	require.Equal(t, "hello", string(w.Bytes()[:5]))
}

func TestWriteBufferMarkCleanResetsDirty(t *testing.T) {
	w := NewWriteBuffer(nil)
	_, err := w.WriteAt([]byte("a"), 0)
	require.NoError(t, err)
	require.True(t, w.Dirty())

	w.MarkClean()
	require.False(t, w.Dirty())
}

func TestWriteBufferBytesIsACopy(t *testing.T) {
	w := NewWriteBuffer([]byte("hello"))
	snapshot := w.Bytes()
	_, err := w.WriteAt([]byte("x"), 0)
	require.NoError(t, err)

	require.Equal(t, "hello", string(snapshot))
}
