package vaultops

import (
	"os"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// WriteFile encrypts name and content and persists them under parentDirID,
// constructing the .c9s shell if the encrypted name exceeds the shortening
// threshold. Writes directly if the target does not yet exist, and goes
// through a temp-then-rename if it does, so a crash never leaves a
// half-written file in the target's place.
func (v *Vault) WriteFile(parentDirID, name string, content []byte) error {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	lp, encName, err := v.lookupPaths(parentDirID, name, vaultcore.EntryFile)
	if err != nil {
		return err
	}

	if lp.IsShortened {
		if err := os.MkdirAll(lp.EntryPath, 0o700); err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
		}
		if err := os.WriteFile(vaultcore.ShortNamePath(lp.EntryPath), []byte(encName), 0o600); err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
		}
	}

	_, statErr := os.Stat(lp.ContentPath)
	exists := statErr == nil
	if exists {
		return v.writeFileBodyOverwrite(lp.ContentPath, content)
	}
	return v.writeFileBodyCreate(lp.ContentPath, content)
}

// ReadFile reads and decrypts the full body of (parentDirID, name).
func (v *Vault) ReadFile(parentDirID, name string) ([]byte, error) {
	releaseDir := v.locks.DirReadLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileReadLock(parentDirID, name)
	defer releaseFile()

	info, err := v.findFileLocked(parentDirID, name)
	if err != nil {
		return nil, err
	}
	return v.readFileBody(info.ContentPath)
}
