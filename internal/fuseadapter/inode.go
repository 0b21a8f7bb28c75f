// Package fuseadapter embeds internal/vaultops and internal/asyncvault
// behind github.com/hanwen/go-fuse/v2/fuse's RawFileSystem contract. It
// owns everything kernel-facing: inode numbers, lookup-count refcounts,
// attribute/directory caches, and open file handles.
//
// Inodes here address vault entries by (parent dir_id, cleartext name)
// rather than a raw path, so a rename only needs to update the table
// entry in place.
package fuseadapter

import "sync"

// RootInodeID is the fixed inode number FUSE reserves for the mount root,
// matching fuseops.RootInodeID in spirit.
const RootInodeID uint64 = 1

// entryKind distinguishes what kind of vault entry an inode addresses,
// needed because lookup/getattr/open all dispatch differently per kind.
type entryKind int

const (
	kindFile entryKind = iota
	kindDirectory
	kindSymlink
)

// inodeEntry is one inode's bookkeeping: the vault coordinates it
// addresses, its kernel-visible refcount, and (for directories) the dir_id
// used to address its own children.
type inodeEntry struct {
	kind   entryKind
	parent string // parent dir_id
	name   string // cleartext name within parent
	dirID  string // only meaningful when kind == kindDirectory

	nlookup uint64
}

// lookupCount tracks the kernel's reference count on an inode: nlookup is
// incremented on every successful lookup/create/mkdir/symlink reply and
// decremented by forget; the entry is only evicted once both the
// kernel's lookup count AND our own bookkeeping agree it has hit zero.
type lookupCount struct {
	n uint64
}

func (l *lookupCount) inc(by uint64) { l.n += by }

// dec returns true if the count reached zero and the inode should be
// forgotten.
func (l *lookupCount) dec(by uint64) bool {
	if by >= l.n {
		l.n = 0
		return true
	}
	l.n -= by
	return false
}

// inodeKey identifies an inode by the vault coordinates it addresses,
// letting repeated lookups of the same (parent, name) pair return the same
// inode number instead of minting a fresh one every time.
type inodeKey struct {
	parent string
	name   string
}

// InodeTable is the bidirectional path<->ino map plus nlookup refcounts
// the kernel expects a FUSE filesystem to maintain. The zero value is not
// usable; use NewInodeTable.
type InodeTable struct {
	mu sync.Mutex

	next    uint64
	byIno   map[uint64]*inodeEntry
	byKey   map[inodeKey]uint64
	lookups map[uint64]*lookupCount
}

func NewInodeTable(rootDirID string) *InodeTable {
	t := &InodeTable{
		next:    RootInodeID,
		byIno:   make(map[uint64]*inodeEntry),
		byKey:   make(map[inodeKey]uint64),
		lookups: make(map[uint64]*lookupCount),
	}
	t.byIno[RootInodeID] = &inodeEntry{kind: kindDirectory, parent: "", name: "", dirID: rootDirID}
	t.lookups[RootInodeID] = &lookupCount{n: 1} // root is never forgotten in practice, but stays consistent
	return t
}

// GetOrCreate returns the existing inode number for (parent, name, kind) if
// one exists (incrementing nlookup by incBy), or mints a fresh one
// (registered with nlookup = incBy). incBy is 0 for readdir (entries
// allocate inodes WITHOUT incrementing nlookup) and 1 for
// lookup/create/mkdir/symlink/readdirplus.
func (t *InodeTable) GetOrCreate(parent, name string, kind entryKind, dirID string, incBy uint64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := inodeKey{parent: parent, name: name}
	if ino, ok := t.byKey[key]; ok {
		t.lookups[ino].inc(incBy)
		return ino
	}

	t.next++
	ino := t.next
	t.byIno[ino] = &inodeEntry{kind: kind, parent: parent, name: name, dirID: dirID}
	t.byKey[key] = ino
	t.lookups[ino] = &lookupCount{n: incBy}
	return ino
}

// Lookup returns the registered entry for ino, or nil if unknown/forgotten.
func (t *InodeTable) Lookup(ino uint64) *inodeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byIno[ino]
}

// Forget decrements ino's nlookup by n, evicting it (unless it is root) if
// the count reaches zero.
func (t *InodeTable) Forget(ino uint64, n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lc, ok := t.lookups[ino]
	if !ok {
		return
	}
	if !lc.dec(n) || ino == RootInodeID {
		return
	}

	entry := t.byIno[ino]
	delete(t.byIno, ino)
	delete(t.lookups, ino)
	if entry != nil {
		delete(t.byKey, inodeKey{parent: entry.parent, name: entry.name})
	}
}

// Invalidate drops the path-mapping entry for (parent, name) without
// touching nlookup bookkeeping elsewhere, used after rename/move/unlink so
// a stale (parent,name) key does not shadow a future re-creation under the
// same name. The inode itself (and its nlookup count) survives until
// Forget, matching FUSE's deferred-eviction contract for still-open
// handles.
func (t *InodeTable) Invalidate(parent, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byKey, inodeKey{parent: parent, name: name})
}

// InoOf returns the inode number currently mapped to (parent, name), if
// any.
func (t *InodeTable) InoOf(parent, name string) (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ino, ok := t.byKey[inodeKey{parent: parent, name: name}]
	return ino, ok
}

// Swap exchanges the (parent,name) coordinates two entries occupy: the
// inode that addressed (parentA,nameA) now addresses (parentB,nameB) and
// vice versa. Used by RENAME_EXCHANGE. Either side may be absent from the
// table (never looked up yet), in which case only the present side's
// mapping moves.
func (t *InodeTable) Swap(parentA, nameA, parentB, nameB string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keyA := inodeKey{parent: parentA, name: nameA}
	keyB := inodeKey{parent: parentB, name: nameB}
	inoA, okA := t.byKey[keyA]
	inoB, okB := t.byKey[keyB]

	delete(t.byKey, keyA)
	delete(t.byKey, keyB)
	if okA {
		if e := t.byIno[inoA]; e != nil {
			e.parent, e.name = parentB, nameB
		}
		t.byKey[keyB] = inoA
	}
	if okB {
		if e := t.byIno[inoB]; e != nil {
			e.parent, e.name = parentA, nameA
		}
		t.byKey[keyA] = inoB
	}
}

// Reparent updates an existing inode's (parent,name,dirID) after a
// rename/move, keeping its inode number and nlookup count stable across
// the operation.
func (t *InodeTable) Reparent(ino uint64, newParent, newName, newDirID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.byIno[ino]
	if entry == nil {
		return
	}
	delete(t.byKey, inodeKey{parent: entry.parent, name: entry.name})
	entry.parent, entry.name = newParent, newName
	if entry.kind == kindDirectory {
		entry.dirID = newDirID
	}
	t.byKey[inodeKey{parent: newParent, name: newName}] = ino
}
