package fuseadapter

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

// Linux's renameat2 flags, reproduced here since go-fuse does not export
// named constants for them.
const (
	renameNoReplace    = 1 << 0
	renameExchangeFlag = 1 << 1
)

// Rename implements the rename row: RENAME_EXCHANGE dispatches to
// renameExchange, RENAME_NOREPLACE adds an existence check ahead of the
// plain path, and the plain path itself picks among the file/directory/
// symlink rename or move operation depending on the looked-up entry's kind
// and on whether the source and destination share a parent.
func (fs *FS) Rename(cancel <-chan struct{}, input *fuse.RenameIn, oldName string, newName string) fuse.Status {
	oldParent := fs.inodes.Lookup(input.NodeId)
	newParent := fs.inodes.Lookup(input.Newdir)
	if oldParent == nil || newParent == nil {
		return fuse.ENOENT
	}

	ctx, stop := fs.dataCtx()
	defer stop()

	if input.Flags&renameExchangeFlag != 0 {
		return fs.renameExchange(ctx, input.NodeId, oldParent, oldName, input.Newdir, newParent, newName)
	}

	if input.Flags&renameNoReplace != 0 {
		existing, err := fs.vault.Lookup(ctx, newParent.dirID, newName)
		if err != nil {
			return toStatus(err)
		}
		if existing.File != nil || existing.Directory != nil || existing.Symlink != nil {
			return fuse.Status(syscall.EEXIST)
		}
	}

	result, err := fs.vault.Lookup(ctx, oldParent.dirID, oldName)
	if err != nil {
		return toStatus(err)
	}

	sameParent := oldParent.dirID == newParent.dirID
	switch {
	case result.Directory != nil:
		if sameParent {
			err = fs.vault.RenameDirectory(ctx, oldParent.dirID, oldName, newName)
		} else {
			err = fs.vault.MoveDirectory(ctx, oldParent.dirID, oldName, newParent.dirID, newName)
		}
	case result.Symlink != nil:
		if sameParent {
			err = fs.vault.RenameSymlink(ctx, oldParent.dirID, oldName, newName)
		} else {
			err = fs.vault.MoveSymlink(ctx, oldParent.dirID, oldName, newParent.dirID, newName)
		}
	case result.File != nil:
		if sameParent {
			err = fs.vault.RenameFile(ctx, oldParent.dirID, oldName, newName)
		} else {
			err = fs.vault.MoveFile(ctx, oldParent.dirID, oldName, newParent.dirID, newName)
		}
	default:
		return fuse.ENOENT
	}
	if err != nil {
		return toStatus(err)
	}

	fs.moveInode(oldParent.dirID, oldName, newParent.dirID, newName)
	fs.caches.invalidateDir(input.NodeId)
	fs.caches.invalidateDir(input.Newdir)
	return fuse.OK
}

// renameExchange implements RENAME_EXCHANGE: both names must already
// exist and be of matching kind. Two files (even across directories)
// exchange via atomic_swap_files; two directories exchange via
// atomic_swap_directories, which only supports a shared parent — a
// cross-parent directory exchange is rejected with EXDEV rather than
// attempted, since making it work would require recursively
// re-encrypting every descendant's filename.
func (fs *FS) renameExchange(ctx context.Context, oldIno uint64, oldParent *inodeEntry, oldName string, newIno uint64, newParent *inodeEntry, newName string) fuse.Status {
	oldResult, err := fs.vault.Lookup(ctx, oldParent.dirID, oldName)
	if err != nil {
		return toStatus(err)
	}
	newResult, err := fs.vault.Lookup(ctx, newParent.dirID, newName)
	if err != nil {
		return toStatus(err)
	}

	switch {
	case oldResult.File != nil && newResult.File != nil:
		err = fs.vault.AtomicSwapFiles(ctx, oldParent.dirID, oldName, newParent.dirID, newName)
	case oldResult.Directory != nil && newResult.Directory != nil:
		if oldParent.dirID != newParent.dirID {
			return toStatus(vaultops.ErrCrossParentDirectorySwap)
		}
		err = fs.vault.AtomicSwapDirectories(ctx, oldParent.dirID, oldName, newName)
	default:
		return statusENOTSUP
	}
	if err != nil {
		return toStatus(err)
	}

	fs.inodes.Swap(oldParent.dirID, oldName, newParent.dirID, newName)
	fs.caches.invalidateDir(oldIno)
	fs.caches.invalidateDir(newIno)
	return fuse.OK
}

// moveInode updates the inode table after a plain rename/move: the inode
// that addressed (oldParentDirID, oldName) now addresses
// (newParentDirID, newName), preserving its number and nlookup count. If
// no inode was ever minted for the source (never looked up), there is
// nothing to carry forward.
func (fs *FS) moveInode(oldParentDirID, oldName, newParentDirID, newName string) {
	ino, ok := fs.inodes.InoOf(oldParentDirID, oldName)
	if !ok {
		return
	}
	entry := fs.inodes.Lookup(ino)
	dirID := ""
	if entry != nil {
		dirID = entry.dirID
	}
	fs.inodes.Reparent(ino, newParentDirID, newName, dirID)
}
