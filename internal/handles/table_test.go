package handles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTablePutAndCloseWriteBuffer(t *testing.T) {
	table := NewTable()
	w := NewWriteBuffer([]byte("hi"))

	id := table.PutWriteBuffer(w)
	require.Same(t, w, table.WriteBuffer(id))
	require.Nil(t, table.Reader(id), "id must not resolve under the reader map")

	closed := table.CloseWriteBuffer(id)
	require.Same(t, w, closed)
	require.Nil(t, table.WriteBuffer(id))
}

func TestTableAllocatesDistinctIDs(t *testing.T) {
	table := NewTable()
	a := table.PutWriteBuffer(NewWriteBuffer(nil))
	b := table.PutWriteBuffer(NewWriteBuffer(nil))
	require.NotEqual(t, a, b)
}
