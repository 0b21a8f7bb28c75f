package fuseadapter

import (
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// fillAttr populates out for the given inode and size, applying a
// consistent mode/uid/gid/nlink. Permission bits, xattrs, and real
// timestamps are out of scope; every entry reports the adapter's fixed
// default mode and the current time, matching the setattr row's
// "atime/mtime changes silently accepted but not persisted".
func (fs *FS) fillAttr(out *fuse.Attr, ino uint64, kind entryKind, size uint64) {
	now := uint64(time.Now().Unix())

	out.Ino = ino
	out.Size = size
	out.Atime = now
	out.Mtime = now
	out.Ctime = now
	out.Uid = fs.cfg.DefaultUID
	out.Gid = fs.cfg.DefaultGID
	out.Nlink = 1

	switch kind {
	case kindDirectory:
		out.Mode = syscall.S_IFDIR | fs.cfg.DefaultDirMode
		out.Nlink = 2
	case kindSymlink:
		out.Mode = syscall.S_IFLNK | 0o777
	default:
		out.Mode = syscall.S_IFREG | fs.cfg.DefaultFileMode
		out.Blocks = (size + 511) / 512
	}
}

func (fs *FS) fillEntryOut(out *fuse.EntryOut, ino uint64, kind entryKind, size uint64) {
	out.NodeId = ino
	out.Generation = 1
	out.SetEntryTimeout(attrCacheTTL)
	out.SetAttrTimeout(attrCacheTTL)
	fs.fillAttr(&out.Attr, ino, kind, size)
}
