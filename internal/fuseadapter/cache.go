package fuseadapter

import (
	"time"

	"github.com/cryptovaultfs/cryptovaultfs/ttlcache"
)

const (
	attrCacheTTL   = 5 * time.Second
	dirCacheTTL    = 3 * time.Second
	cacheSweepTick = 30 * time.Second
)

// cachedAttr is what getattr needs without recomputing size via find_file /
// read_symlink: the kernel-facing Attr plus whether this entry is known
// absent (a negative cache hit, per the lookup row's "on miss insert a
// negative-cache entry").
type cachedAttr struct {
	negative bool
	size     uint64
	mode     uint32
}

// dirListing is one readdir/readdirplus reply's worth of cached entries,
// keyed by the directory's inode.
type dirListing struct {
	names []cachedDirEntry
}

type cachedDirEntry struct {
	name string
	ino  uint64
	mode uint32
}

// caches bundles the adapter's two-tier attribute cache (keyed by inode)
// and directory-listing cache (keyed by the parent directory's inode),
// both built on ttlcache.Cache.
type caches struct {
	attr *ttlcache.Cache[uint64, cachedAttr]
	dir  *ttlcache.Cache[uint64, dirListing]
}

func newCaches() *caches {
	return &caches{
		attr: ttlcache.New[uint64, cachedAttr](attrCacheTTL, cacheSweepTick),
		dir:  ttlcache.New[uint64, dirListing](dirCacheTTL, cacheSweepTick),
	}
}

func (c *caches) invalidateAttr(ino uint64)  { c.attr.Delete(ino) }
func (c *caches) invalidateDir(ino uint64)   { c.dir.Delete(ino) }
func (c *caches) setNegative(ino uint64)     { c.attr.Set(ino, cachedAttr{negative: true}) }
func (c *caches) stop() {
	c.attr.Stop()
	c.dir.Stop()
}
