package vaultops

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// AtomicSwapFiles exchanges the bodies of two file entries in place: after
// the call, (dirA, nameA) holds what (dirB, nameB) held and vice versa,
// with both names preserved. Uses a three-phase protocol: stage A's body
// in a UUID temp entry, overwrite A's position with B's body, overwrite
// B's position with the staged (original A) body, then remove the temp
// entry. A crash at phase 2 is recovered by deleting the temp entry (A
// still holds its original content); a crash at phase 3 is recovered by
// restoring A from the temp entry before removing it.
func (v *Vault) AtomicSwapFiles(dirA, nameA, dirB, nameB string) error {
	if dirA == dirB && nameA == nameB {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, nameA, dirA)
	}

	releaseDirs := v.locks.LockDirectoriesWriteOrdered([]string{dirA, dirB})
	defer releaseDirs()
	releaseFiles := v.locks.LockFilesWriteOrdered(dirA, []string{nameA})
	defer releaseFiles()
	if dirA != dirB {
		defer v.locks.LockFilesWriteOrdered(dirB, []string{nameB})()
	} else {
		defer v.locks.LockFilesWriteOrdered(dirA, []string{nameB})()
	}

	infoA, err := v.findFileLocked(dirA, nameA)
	if err != nil {
		return err
	}
	infoB, err := v.findFileLocked(dirB, nameB)
	if err != nil {
		return err
	}

	storageA, err := v.storageDir(dirA)
	if err != nil {
		return err
	}
	tempPath, err := stageSwapTemp(storageA, infoA.ContentPath)
	if err != nil {
		return err
	}

	if err := copyRawFile(infoB.ContentPath, infoA.ContentPath); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := copyRawFile(tempPath, infoB.ContentPath); err != nil {
		// Phase 3 failed: restore A from the staged original, then clean up.
		_ = copyRawFile(tempPath, infoA.ContentPath)
		_ = os.Remove(tempPath)
		return err
	}

	if err := os.Remove(tempPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, nameA, dirA)
	}
	return nil
}

// AtomicSwapDirectories exchanges which child dir_id two entries in the
// SAME parent point at. Cross-parent swap is rejected with EXDEV since it
// would require recursively re-encrypting every descendant's filename.
func (v *Vault) AtomicSwapDirectories(parentDirID, nameA, nameB string) error {
	if nameA == nameB {
		return vaulterrors.New(vaulterrors.KindSameSourceAndDestination, nameA, parentDirID)
	}

	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFiles := v.locks.LockFilesWriteOrdered(parentDirID, []string{nameA, nameB})
	defer releaseFiles()

	infoA, err := v.findDirectoryLocked(parentDirID, nameA)
	if err != nil {
		return err
	}
	infoB, err := v.findDirectoryLocked(parentDirID, nameB)
	if err != nil {
		return err
	}

	lpA, _, err := v.lookupPaths(parentDirID, nameA, vaultcore.EntryDirectory)
	if err != nil {
		return err
	}
	lpB, _, err := v.lookupPaths(parentDirID, nameB, vaultcore.EntryDirectory)
	if err != nil {
		return err
	}

	if err := os.WriteFile(lpA.ContentPath, []byte(infoB.DirID), 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, nameA, parentDirID)
	}
	if err := os.WriteFile(lpB.ContentPath, []byte(infoA.DirID), 0o600); err != nil {
		// Best-effort restore of A before surfacing the error.
		_ = os.WriteFile(lpA.ContentPath, []byte(infoA.DirID), 0o600)
		return vaulterrors.Wrap(vaulterrors.KindIO, err, nameB, parentDirID)
	}
	return nil
}

// ErrCrossParentDirectorySwap is the sentinel error for the rejected
// cross-parent directory swap case; callers at the FUSE boundary translate
// it to EXDEV.
var ErrCrossParentDirectorySwap = vaulterrors.New(vaulterrors.KindInvalidVaultStructure, "", "")

func stageSwapTemp(storageDir, contentPath string) (string, error) {
	tempPath := fmt.Sprintf("%s/.swap_temp_%s%s", storageDir, uuid.NewString(), vaultcore.RegularSuffix)
	if err := copyRawFile(contentPath, tempPath); err != nil {
		return "", err
	}
	return tempPath, nil
}

func copyRawFile(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}
	if err := renameio.WriteFile(dst, raw, 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindAtomicWriteFailed, err, "", "")
	}
	return nil
}
