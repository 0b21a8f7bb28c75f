package vaultops

import (
	"os"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// DeleteRecursive removes (parentDirID, name) and, if it is a directory,
// every descendant underneath it: files and symlinks are unlinked directly,
// child directories recurse depth-first before their own storage area and
// parent entry are removed. Matches the listing order's categorization so a
// partial failure leaves a subset of entries removed rather than a
// corrupted intermediate state.
func (v *Vault) DeleteRecursive(parentDirID, name string) error {
	if dirInfo, err := v.FindDirectory(parentDirID, name); err == nil {
		return v.deleteDirectoryRecursive(parentDirID, name, dirInfo.DirID)
	}

	if _, err := v.FindFile(parentDirID, name); err == nil {
		return v.DeleteFile(parentDirID, name)
	}

	if _, err := v.FindSymlink(parentDirID, name); err == nil {
		return v.DeleteSymlink(parentDirID, name)
	}

	return v.DeleteFile(parentDirID, name)
}

func (v *Vault) deleteDirectoryRecursive(parentDirID, name, childDirID string) error {
	listing, err := v.ListAll(childDirID)
	if err != nil {
		return err
	}

	for _, f := range listing.Files {
		if err := v.DeleteFile(childDirID, f.Name); err != nil {
			return err
		}
	}
	for _, s := range listing.Symlinks {
		if err := v.DeleteSymlink(childDirID, s.Name); err != nil {
			return err
		}
	}
	for _, d := range listing.Directories {
		if err := v.deleteDirectoryRecursive(childDirID, d.Name, d.DirID); err != nil {
			return err
		}
	}

	return v.removeEmptyDirectory(parentDirID, name, childDirID)
}

// removeEmptyDirectory performs the same storage-area-then-entry removal as
// DeleteDirectory but skips the non-empty check, since the recursive caller
// has already emptied it.
func (v *Vault) removeEmptyDirectory(parentDirID, name, childDirID string) error {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	info, err := v.findDirectoryLocked(parentDirID, name)
	if err != nil {
		return err
	}

	storage, err := v.storageDir(childDirID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(storage); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	if err := os.RemoveAll(info.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	return nil
}
