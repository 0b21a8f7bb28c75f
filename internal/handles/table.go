// Package handles owns open file handles: opaque integer ids mapping to
// either a streaming Reader or an in-memory WriteBuffer. Grounded on the
// teacher's lease.FileLeaser (a leased, refreshing read proxy over file
// content) and gcsproxy.MutableContent (a dirty-tracking mutable staging
// area backed by a temp file), generalized from "leased GCS object bytes"
// to "leased decrypted bytes over an encrypted on-disk vault entry".
package handles

import "sync"

// ID is an opaque handle identifier, allocated monotonically. A reused id
// is never issued while its prior holder is still open.
type ID uint64

// Table owns every open Reader and WriteBuffer for one vault mount.
type Table struct {
	mu      sync.Mutex
	next    ID
	readers map[ID]*Reader
	writers map[ID]*WriteBuffer
}

// NewTable creates an empty handle table.
func NewTable() *Table {
	return &Table{
		readers: make(map[ID]*Reader),
		writers: make(map[ID]*WriteBuffer),
	}
}

func (t *Table) allocate() ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

// PutReader registers r under a freshly allocated id.
func (t *Table) PutReader(r *Reader) ID {
	id := t.allocate()
	t.mu.Lock()
	t.readers[id] = r
	t.mu.Unlock()
	return id
}

// PutWriteBuffer registers w under a freshly allocated id.
func (t *Table) PutWriteBuffer(w *WriteBuffer) ID {
	id := t.allocate()
	t.mu.Lock()
	t.writers[id] = w
	t.mu.Unlock()
	return id
}

// Reader looks up a previously registered Reader, or returns nil if the id
// is unknown or belongs to a WriteBuffer.
func (t *Table) Reader(id ID) *Reader {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readers[id]
}

// WriteBuffer looks up a previously registered WriteBuffer.
func (t *Table) WriteBuffer(id ID) *WriteBuffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writers[id]
}

// CloseReader removes and returns a Reader, or nil if unknown.
func (t *Table) CloseReader(id ID) *Reader {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.readers[id]
	delete(t.readers, id)
	return r
}

// CloseWriteBuffer removes and returns a WriteBuffer, or nil if unknown.
func (t *Table) CloseWriteBuffer(id ID) *WriteBuffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := t.writers[id]
	delete(t.writers, id)
	return w
}
