package fuseadapter

import (
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/cryptovaultfs/cryptovaultfs/common"
	"github.com/cryptovaultfs/cryptovaultfs/internal/cryptoprim"
)

// Lookup implements the lookup row: find_file/find_directory/find_symlink
// in parallel via asyncvault.Lookup, returning ENOENT when none matches.
// Every call queries the vault: a miss does not cache a negative entry, and
// a (parent,name) pair that is already registered is not answered from
// cached attributes.
func (fs *FS) Lookup(cancel <-chan struct{}, header *fuse.InHeader, name string, out *fuse.EntryOut) fuse.Status {
	parent := fs.inodes.Lookup(header.NodeId)
	if parent == nil {
		return fuse.ENOENT
	}

	return fs.submitMeta(common.OpLookUpInode, func() fuse.Status {
		ctx, stop := fs.metadataCtx()
		defer stop()

		result, err := fs.vault.Lookup(ctx, parent.dirID, name)
		if err != nil {
			return toStatus(err)
		}

		switch {
		case result.Directory != nil:
			ino := fs.inodes.GetOrCreate(parent.dirID, name, kindDirectory, result.Directory.DirID, 1)
			fs.fillEntryOut(out, ino, kindDirectory, 0)
			fs.caches.invalidateAttr(ino)
			return fuse.OK
		case result.File != nil:
			ino := fs.inodes.GetOrCreate(parent.dirID, name, kindFile, "", 1)
			fs.fillEntryOut(out, ino, kindFile, uint64(cryptoprim.PlaintextSize(result.File.EncryptedSize)))
			return fuse.OK
		case result.Symlink != nil:
			ino := fs.inodes.GetOrCreate(parent.dirID, name, kindSymlink, "", 1)
			fs.fillEntryOut(out, ino, kindSymlink, uint64(len(result.Symlink.Target)))
			return fuse.OK
		default:
			return fuse.ENOENT
		}
	})
}

// Forget implements nlookup refcounting: decrement by nlookup, evicting
// non-root inodes once it reaches zero.
func (fs *FS) Forget(nodeid, nlookup uint64) {
	fs.inodes.Forget(nodeid, nlookup)
}

// GetAttr is cache-first; on a miss it recomputes size via find_file or
// read_symlink (find_directory never needs a size).
func (fs *FS) GetAttr(cancel <-chan struct{}, input *fuse.GetAttrIn, out *fuse.AttrOut) fuse.Status {
	entry := fs.inodes.Lookup(input.NodeId)
	if entry == nil {
		return fuse.ENOENT
	}

	if cached, ok := fs.caches.attr.Get(input.NodeId); ok {
		if cached.negative {
			return fuse.ENOENT
		}
		out.SetTimeout(attrCacheTTL)
		fs.fillAttr(&out.Attr, input.NodeId, entry.kind, cached.size)
		return fuse.OK
	}

	return fs.submitMeta(common.OpGetInodeAttributes, func() fuse.Status {
		size, status := fs.statSize(entry)
		if status != fuse.OK {
			if status == fuse.ENOENT {
				fs.caches.setNegative(input.NodeId)
			}
			return status
		}

		fs.caches.attr.Set(input.NodeId, cachedAttr{size: size})
		out.SetTimeout(attrCacheTTL)
		fs.fillAttr(&out.Attr, input.NodeId, entry.kind, size)
		return fuse.OK
	})
}

func (fs *FS) statSize(entry *inodeEntry) (uint64, fuse.Status) {
	ctx, stop := fs.metadataCtx()
	defer stop()

	switch entry.kind {
	case kindFile:
		info, err := fs.vault.FindFile(ctx, entry.parent, entry.name)
		if err != nil {
			return 0, toStatus(err)
		}
		return uint64(cryptoprim.PlaintextSize(info.EncryptedSize)), fuse.OK
	case kindSymlink:
		info, err := fs.vault.FindSymlink(ctx, entry.parent, entry.name)
		if err != nil {
			return 0, toStatus(err)
		}
		return uint64(len(info.Target)), fuse.OK
	default:
		return 0, fuse.OK
	}
}

// SetAttr implements the setattr row: chmod/chown are rejected with
// ENOTSUP, size changes truncate the open write buffer (or read-modify-
// write the vault entry if none is open), and atime/mtime are accepted
// without being persisted anywhere.
func (fs *FS) SetAttr(cancel <-chan struct{}, input *fuse.SetAttrIn, out *fuse.AttrOut) fuse.Status {
	const (
		faMode = 1 << 0
		faUID  = 1 << 1
		faGID  = 1 << 2
		faSize = 1 << 3
	)

	if input.Valid&(faMode|faUID|faGID) != 0 {
		return statusENOTSUP
	}

	entry := fs.inodes.Lookup(input.NodeId)
	if entry == nil {
		return fuse.ENOENT
	}

	if input.Valid&faSize != 0 {
		if status := fs.truncate(entry, input.NodeId, int64(input.Size)); status != fuse.OK {
			return status
		}
		fs.caches.invalidateAttr(input.NodeId)
	}

	size, status := fs.statSize(entry)
	if status != fuse.OK {
		return status
	}
	fs.fillAttr(&out.Attr, input.NodeId, entry.kind, size)
	out.SetTimeout(attrCacheTTL)
	return fuse.OK
}

func (fs *FS) truncate(entry *inodeEntry, ino uint64, size int64) fuse.Status {
	if wb := fs.writeBufferForInode(ino); wb != nil {
		if err := wb.Truncate(size); err != nil {
			return toStatus(err)
		}
		return fuse.OK
	}

	ctx, stop := fs.dataCtx()
	defer stop()

	content, err := fs.vault.ReadFile(ctx, entry.parent, entry.name)
	if err != nil {
		return toStatus(err)
	}
	resized := make([]byte, size)
	copy(resized, content)
	if err := fs.vault.WriteFile(ctx, entry.parent, entry.name, resized); err != nil {
		return toStatus(err)
	}
	return fuse.OK
}
