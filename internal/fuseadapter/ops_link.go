package fuseadapter

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Symlink implements the symlink row: EEXIST pre-check, then
// create_symlink, a fresh inode, and parent cache invalidation.
func (fs *FS) Symlink(cancel <-chan struct{}, header *fuse.InHeader, pointedTo string, linkName string, out *fuse.EntryOut) fuse.Status {
	parent := fs.inodes.Lookup(header.NodeId)
	if parent == nil {
		return fuse.ENOENT
	}

	ctx, stop := fs.metadataCtx()
	existing, err := fs.vault.Lookup(ctx, parent.dirID, linkName)
	if err != nil {
		stop()
		return toStatus(err)
	}
	if existing.File != nil || existing.Directory != nil || existing.Symlink != nil {
		stop()
		return fuse.Status(syscall.EEXIST)
	}

	info, err := fs.vault.CreateSymlink(ctx, parent.dirID, linkName, pointedTo)
	stop()
	if err != nil {
		return toStatus(err)
	}

	ino := fs.inodes.GetOrCreate(parent.dirID, linkName, kindSymlink, "", 1)
	fs.caches.invalidateDir(header.NodeId)
	fs.fillEntryOut(out, ino, kindSymlink, uint64(len(info.Target)))
	return fuse.OK
}

// Readlink returns the decrypted target.
func (fs *FS) Readlink(cancel <-chan struct{}, header *fuse.InHeader) ([]byte, fuse.Status) {
	entry := fs.inodes.Lookup(header.NodeId)
	if entry == nil || entry.kind != kindSymlink {
		return nil, fuse.ENOENT
	}

	ctx, stop := fs.metadataCtx()
	defer stop()
	info, err := fs.vault.FindSymlink(ctx, entry.parent, entry.name)
	if err != nil {
		return nil, toStatus(err)
	}
	return []byte(info.Target), fuse.OK
}

// Unlink implements the unlink row: try delete_file, fall back to
// delete_symlink, invalidating the path mapping and directory cache
// either way.
func (fs *FS) Unlink(cancel <-chan struct{}, header *fuse.InHeader, name string) fuse.Status {
	parent := fs.inodes.Lookup(header.NodeId)
	if parent == nil {
		return fuse.ENOENT
	}

	ctx, stop := fs.dataCtx()
	defer stop()

	err := fs.vault.DeleteFile(ctx, parent.dirID, name)
	if err != nil {
		err = fs.vault.DeleteSymlink(ctx, parent.dirID, name)
	}
	if err != nil {
		return toStatus(err)
	}

	fs.inodes.Invalidate(parent.dirID, name)
	fs.caches.invalidateDir(header.NodeId)
	return fuse.OK
}

// Rmdir delegates to delete_directory, which the vault layer enforces must
// be empty.
func (fs *FS) Rmdir(cancel <-chan struct{}, header *fuse.InHeader, name string) fuse.Status {
	parent := fs.inodes.Lookup(header.NodeId)
	if parent == nil {
		return fuse.ENOENT
	}

	ctx, stop := fs.metadataCtx()
	err := fs.vault.DeleteDirectory(ctx, parent.dirID, name)
	stop()
	if err != nil {
		return toStatus(err)
	}

	fs.inodes.Invalidate(parent.dirID, name)
	fs.caches.invalidateDir(header.NodeId)
	return fuse.OK
}
