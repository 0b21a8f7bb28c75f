package handles

import (
	"os"
	"sync"

	"github.com/cryptovaultfs/cryptovaultfs/internal/cryptoprim"
	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
)

// Reader is a position-independent streaming decryptor over an open
// encrypted on-disk file. Multiple concurrent reads on the same handle are
// safe; each decrypts only the chunks it needs via cryptoprim.DecryptRange.
//
// External synchronization beyond the internal mutex is not required: a
// Reader never mutates, so callers do not need to hold a lock around
// Read calls.
type Reader struct {
	mu sync.Mutex

	file          *os.File
	key           *masterkey.Key
	plaintextSize int64

	// ciphertext is lazily loaded in full on first read and cached for the
	// handle's lifetime. The backing file never changes under an open
	// handle (overwrites go through write-then-rename onto a new inode),
	// so caching is safe and avoids re-reading on every ReadAt.
	ciphertext []byte

	// releaseLocks, when non-nil, is called once by Close to release any
	// directory/file locks the opener held for the handle's lifetime.
	releaseLocks func()
}

// NewReader opens an encrypted file for streaming decrypted reads. The
// caller supplies the already-decided plaintext size (computed once via
// cryptoprim.PlaintextSize from the file's on-disk size) so Reader never
// needs to stat.
func NewReader(file *os.File, key *masterkey.Key, plaintextSize int64, releaseLocks func()) *Reader {
	return &Reader{file: file, key: key, plaintextSize: plaintextSize, releaseLocks: releaseLocks}
}

// Size returns the plaintext size of the underlying entry.
func (r *Reader) Size() int64 { return r.plaintextSize }

// ReadAt decrypts and returns up to len(p) plaintext bytes starting at
// offset, following io.ReaderAt short-read-at-EOF semantics.
func (r *Reader) ReadAt(p []byte, offset int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if offset >= r.plaintextSize {
		return 0, nil
	}
	length := int64(len(p))
	if offset+length > r.plaintextSize {
		length = r.plaintextSize - offset
	}
	if length <= 0 {
		return 0, nil
	}

	if r.ciphertext == nil {
		ciphertextSize := cryptoprim.CiphertextSize(r.plaintextSize)
		buf := make([]byte, ciphertextSize)
		if _, err := r.file.ReadAt(buf, 0); err != nil {
			return 0, err
		}
		r.ciphertext = buf
	}

	plaintext, err := cryptoprim.DecryptRange(r.ciphertext, r.key, offset, length)
	if err != nil {
		return 0, err
	}
	return copy(p, plaintext), nil
}

// Close releases the underlying file descriptor and any held locks. Safe to
// call once; subsequent calls are no-ops.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.releaseLocks != nil {
		r.releaseLocks()
		r.releaseLocks = nil
	}
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
