package vaultops

import (
	"os"

	"github.com/google/uuid"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// CreateDirectory allocates a fresh DirId, creates its storage area (with
// its dirid.c9r own-id backup), and creates the parent-side entry pointing
// at it.
func (v *Vault) CreateDirectory(parentDirID, name string) (*DirectoryInfo, error) {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	if _, err := v.findDirectoryLocked(parentDirID, name); err == nil {
		return nil, vaulterrors.New(vaulterrors.KindAlreadyExistsDir, name, parentDirID)
	}

	childID := uuid.NewString()

	childStorage, err := v.storageDir(childID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(childStorage, 0o700); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	// dirid.c9r backs up the directory's OWN id, not its parent's.
	if err := v.writeFileBodyCreate(vaultcore.DirIDBackupPath(childStorage), []byte(childID)); err != nil {
		return nil, err
	}

	lp, _, err := v.lookupPaths(parentDirID, name, vaultcore.EntryDirectory)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(lp.EntryPath, 0o700); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	if lp.IsShortened {
		encName, err := v.encryptName(name, parentDirID)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(vaultcore.ShortNamePath(lp.EntryPath), []byte(encName), 0o600); err != nil {
			return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
		}
	}
	if err := os.WriteFile(lp.ContentPath, []byte(childID), 0o600); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	return &DirectoryInfo{Name: name, DirID: childID, EncryptedPath: lp.EntryPath, ParentDirID: parentDirID}, nil
}

// CreateDirectoryAll walks path components from root, creating any missing
// directory along the way, mkdir -p style.
func (v *Vault) CreateDirectoryAll(components []string) (*DirectoryInfo, error) {
	currentDirID := RootDirID
	var info *DirectoryInfo
	for _, comp := range components {
		existing, err := v.FindDirectory(currentDirID, comp)
		if err == nil {
			info = existing
			currentDirID = existing.DirID
			continue
		}

		created, err := v.CreateDirectory(currentDirID, comp)
		if err != nil {
			return nil, err
		}
		info = created
		currentDirID = created.DirID
	}
	return info, nil
}

// DeleteDirectory removes an empty subdirectory: its storage area and its
// parent-side entry. Returns NotEmpty if it still has entries.
func (v *Vault) DeleteDirectory(parentDirID, name string) error {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	info, err := v.findDirectoryLocked(parentDirID, name)
	if err != nil {
		return err
	}

	storage, err := v.storageDir(info.DirID)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(storage)
	if err != nil && !os.IsNotExist(err) {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	if nonBackupEntryCount(entries) > 0 {
		return vaulterrors.New(vaulterrors.KindNotEmpty, name, parentDirID)
	}

	if err := os.RemoveAll(storage); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	if err := os.RemoveAll(info.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	return nil
}

func nonBackupEntryCount(entries []os.DirEntry) int {
	count := 0
	for _, e := range entries {
		if e.Name() == vaultcore.DirIDBackupName {
			continue
		}
		count++
	}
	return count
}

// CreateSymlink encrypts name and target, persisting a symlink entry.
func (v *Vault) CreateSymlink(parentDirID, name, target string) (*SymlinkInfo, error) {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	if _, err := v.findSymlinkLocked(parentDirID, name); err == nil {
		return nil, vaulterrors.New(vaulterrors.KindAlreadyExistsSymlink, name, parentDirID)
	}

	lp, encName, err := v.lookupPaths(parentDirID, name, vaultcore.EntrySymlink)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(lp.EntryPath, 0o700); err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	if lp.IsShortened {
		if err := os.WriteFile(vaultcore.ShortNamePath(lp.EntryPath), []byte(encName), 0o600); err != nil {
			return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
		}
	}

	if err := v.writeFileBodyCreate(lp.ContentPath, []byte(target)); err != nil {
		return nil, err
	}

	return &SymlinkInfo{Name: name, Target: target, EncryptedPath: lp.EntryPath, IsShortened: lp.IsShortened}, nil
}

// DeleteFile removes a file entry (the .c9r file, or the .c9s shell).
func (v *Vault) DeleteFile(parentDirID, name string) error {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	info, err := v.findFileLocked(parentDirID, name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(info.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	return nil
}

// DeleteSymlink removes a symlink entry.
func (v *Vault) DeleteSymlink(parentDirID, name string) error {
	releaseDir := v.locks.DirWriteLock(parentDirID)
	defer releaseDir()
	releaseFile := v.locks.FileWriteLock(parentDirID, name)
	defer releaseFile()

	info, err := v.findSymlinkLocked(parentDirID, name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(info.EncryptedPath); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	return nil
}
