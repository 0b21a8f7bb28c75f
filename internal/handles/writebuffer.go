package handles

import (
	"sync"
	"time"
)

// WriteBuffer is an in-memory staging area holding the entire plaintext
// body of one vault entry until release, when it is encrypted and written
// out under the write safety policy: a dirty flag plus a mutation
// timestamp, with the whole body (not just a dirty suffix) held in
// memory.
//
// Every method takes the buffer's internal mutex, so concurrent
// ReadAt/WriteAt calls on one buffer are serialized against each other.
type WriteBuffer struct {
	mu sync.Mutex

	content []byte
	dirty   bool
	mtime   time.Time
}

// NewWriteBuffer stages initial as the buffer's starting content. initial
// is the plaintext already decrypted from disk (or empty, for a newly
// created entry).
func NewWriteBuffer(initial []byte) *WriteBuffer {
	buf := make([]byte, len(initial))
	copy(buf, initial)
	return &WriteBuffer{content: buf}
}

// Size returns the buffer's current plaintext length.
func (w *WriteBuffer) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(len(w.content))
}

// Dirty reports whether the buffer has been written to or truncated since
// creation or the last MarkClean.
func (w *WriteBuffer) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// ReadAt copies up to len(p) bytes from offset into p.
func (w *WriteBuffer) ReadAt(p []byte, offset int64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if offset >= int64(len(w.content)) {
		return 0, nil
	}
	n := copy(p, w.content[offset:])
	return n, nil
}

// WriteAt overwrites/extends the buffer at offset, zero-filling any gap if
// offset is past the current end (sparse-file semantics are a non-goal, but
// a short extension happens naturally on sequential append writes).
func (w *WriteBuffer) WriteAt(p []byte, offset int64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	end := offset + int64(len(p))
	if end > int64(len(w.content)) {
		grown := make([]byte, end)
		copy(grown, w.content)
		w.content = grown
	}
	copy(w.content[offset:], p)
	w.dirty = true
	w.mtime = time.Now()
	return len(p), nil
}

// Truncate resizes the buffer to size, zero-filling on growth.
func (w *WriteBuffer) Truncate(size int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case size == int64(len(w.content)):
		return nil
	case size < int64(len(w.content)):
		w.content = w.content[:size]
	default:
		grown := make([]byte, size)
		copy(grown, w.content)
		w.content = grown
	}
	w.dirty = true
	w.mtime = time.Now()
	return nil
}

// Bytes returns a copy of the current plaintext content, for the flush
// sequence to hand to encrypt_file/write_file. Copying (rather than
// returning the internal slice) means a racing WriteAt during flush cannot
// corrupt the in-flight encryption.
func (w *WriteBuffer) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]byte, len(w.content))
	copy(out, w.content)
	return out
}

// MarkClean clears the dirty flag after a successful flush.
func (w *WriteBuffer) MarkClean() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = false
}

// MTime returns the last write time, or the zero Time if never written.
func (w *WriteBuffer) MTime() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mtime
}
