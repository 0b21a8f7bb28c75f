package vaultops

import (
	"os"

	"github.com/google/renameio/v2"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// RenameFile renames a file within the same directory. Deterministic name
// encryption means the new entry's ciphertext is simply the new cleartext
// encrypted under the unchanged dir_id; the body is copied byte-for-byte
// (file-body encryption does not depend on the containing filename).
// Create-before-delete: a crash between the two leaves both entries
// present but the old one logically unreferenced.
func (v *Vault) RenameFile(dirID, oldName, newName string) error {
	if oldName == newName {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, oldName, dirID)
	}

	releaseDir := v.locks.DirWriteLock(dirID)
	defer releaseDir()
	releaseFiles := v.locks.LockFilesWriteOrdered(dirID, []string{oldName, newName})
	defer releaseFiles()

	return v.renameOrMoveFile(dirID, oldName, dirID, newName)
}

// MoveFile moves a file to a different directory, optionally under a new
// name. The destination dir_id becomes the new associated data for the
// filename encryption; the body is copied as-is.
func (v *Vault) MoveFile(srcDirID, srcName, dstDirID, dstName string) error {
	if srcDirID == dstDirID && srcName == dstName {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, srcName, srcDirID)
	}

	releaseDirs := v.locks.LockDirectoriesWriteOrdered([]string{srcDirID, dstDirID})
	defer releaseDirs()
	releaseSrc := v.locks.FileWriteLock(srcDirID, srcName)
	defer releaseSrc()
	releaseDst := v.locks.FileWriteLock(dstDirID, dstName)
	defer releaseDst()

	return v.renameOrMoveFile(srcDirID, srcName, dstDirID, dstName)
}

func (v *Vault) renameOrMoveFile(srcDirID, srcName, dstDirID, dstName string) error {
	src, err := v.findFileLocked(srcDirID, srcName)
	if err != nil {
		return err
	}
	if _, err := v.findFileLocked(dstDirID, dstName); err == nil {
		return vaulterrors.New(vaulterrors.KindAlreadyExistsFile, dstName, dstDirID)
	}

	raw, err := os.ReadFile(src.ContentPath)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, srcName, srcDirID)
	}

	dstLP, encName, err := v.lookupPaths(dstDirID, dstName, vaultcore.EntryFile)
	if err != nil {
		return err
	}
	if dstLP.IsShortened {
		if err := os.MkdirAll(dstLP.EntryPath, 0o700); err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstDirID)
		}
		if err := os.WriteFile(vaultcore.ShortNamePath(dstLP.EntryPath), []byte(encName), 0o600); err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstDirID)
		}
	}
	if err := renameio.WriteFile(dstLP.ContentPath, raw, 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindAtomicWriteFailed, err, dstName, dstDirID)
	}

	if err := os.RemoveAll(src.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, srcName, srcDirID)
	}
	return nil
}

// RenameDirectory renames a subdirectory within the same parent. Only the
// parent-side entry name changes; the directory's own id, and therefore
// every descendant's encrypted filename, is untouched.
func (v *Vault) RenameDirectory(parentDirID, oldName, newName string) error {
	return v.MoveDirectory(parentDirID, oldName, parentDirID, newName)
}

// MoveDirectory moves (and optionally renames) a subdirectory across
// parents. Only the entry pointing at the child dir_id changes; descendants
// are unaffected since their filenames are encrypted under the child's own
// (unchanged) dir_id.
func (v *Vault) MoveDirectory(srcParentDirID, srcName, dstParentDirID, dstName string) error {
	if srcParentDirID == dstParentDirID && srcName == dstName {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, srcName, srcParentDirID)
	}

	releaseDirs := v.locks.LockDirectoriesWriteOrdered([]string{srcParentDirID, dstParentDirID})
	defer releaseDirs()
	releaseSrc := v.locks.FileWriteLock(srcParentDirID, srcName)
	defer releaseSrc()
	releaseDst := v.locks.FileWriteLock(dstParentDirID, dstName)
	defer releaseDst()

	src, err := v.findDirectoryLocked(srcParentDirID, srcName)
	if err != nil {
		return err
	}
	if _, err := v.findDirectoryLocked(dstParentDirID, dstName); err == nil {
		return vaulterrors.New(vaulterrors.KindAlreadyExistsDir, dstName, dstParentDirID)
	}

	dstLP, encName, err := v.lookupPaths(dstParentDirID, dstName, vaultcore.EntryDirectory)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dstLP.EntryPath, 0o700); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstParentDirID)
	}
	if dstLP.IsShortened {
		if err := os.WriteFile(vaultcore.ShortNamePath(dstLP.EntryPath), []byte(encName), 0o600); err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstParentDirID)
		}
	}
	if err := os.WriteFile(dstLP.ContentPath, []byte(src.DirID), 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstParentDirID)
	}

	if err := os.RemoveAll(src.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, srcName, srcParentDirID)
	}
	return nil
}

// RenameSymlink renames a symlink within the same directory.
func (v *Vault) RenameSymlink(dirID, oldName, newName string) error {
	if oldName == newName {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, oldName, dirID)
	}
	releaseDir := v.locks.DirWriteLock(dirID)
	defer releaseDir()
	releaseFiles := v.locks.LockFilesWriteOrdered(dirID, []string{oldName, newName})
	defer releaseFiles()
	return v.renameOrMoveSymlink(dirID, oldName, dirID, newName)
}

// MoveSymlink moves a symlink to a different directory, optionally under a
// new name.
func (v *Vault) MoveSymlink(srcDirID, srcName, dstDirID, dstName string) error {
	if srcDirID == dstDirID && srcName == dstName {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, srcName, srcDirID)
	}
	releaseDirs := v.locks.LockDirectoriesWriteOrdered([]string{srcDirID, dstDirID})
	defer releaseDirs()
	releaseSrc := v.locks.FileWriteLock(srcDirID, srcName)
	defer releaseSrc()
	releaseDst := v.locks.FileWriteLock(dstDirID, dstName)
	defer releaseDst()
	return v.renameOrMoveSymlink(srcDirID, srcName, dstDirID, dstName)
}

// renameOrMoveSymlink mirrors renameOrMoveFile: a symlink's target ciphertext
// does not depend on its containing name or directory, so the move copies
// the raw symlink.c9r bytes rather than decrypting and re-encrypting the
// target. Unlike a file entry, the destination's EntryPath is a directory
// (the .c9r shell holding symlink.c9r), matching CreateSymlink.
func (v *Vault) renameOrMoveSymlink(srcDirID, srcName, dstDirID, dstName string) error {
	src, err := v.findSymlinkLocked(srcDirID, srcName)
	if err != nil {
		return err
	}
	if _, err := v.findSymlinkLocked(dstDirID, dstName); err == nil {
		return vaulterrors.New(vaulterrors.KindAlreadyExistsSymlink, dstName, dstDirID)
	}

	srcLP, _, err := v.lookupPaths(srcDirID, srcName, vaultcore.EntrySymlink)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(srcLP.ContentPath)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, srcName, srcDirID)
	}

	dstLP, encName, err := v.lookupPaths(dstDirID, dstName, vaultcore.EntrySymlink)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dstLP.EntryPath, 0o700); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstDirID)
	}
	if dstLP.IsShortened {
		if err := os.WriteFile(vaultcore.ShortNamePath(dstLP.EntryPath), []byte(encName), 0o600); err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, dstName, dstDirID)
		}
	}
	if err := renameio.WriteFile(dstLP.ContentPath, raw, 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindAtomicWriteFailed, err, dstName, dstDirID)
	}
	if err := os.RemoveAll(src.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, srcName, srcDirID)
	}
	return nil
}
