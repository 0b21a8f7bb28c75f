package vaultops

import (
	"errors"
	"os"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// FindFile resolves (parentDirID, name) to a file's info in O(1): no
// directory scan, just encrypting the name and stat-ing the two candidate
// on-disk locations directly.
func (v *Vault) FindFile(parentDirID, name string) (*FileInfo, error) {
	release := v.locks.DirReadLock(parentDirID)
	defer release()
	return v.findFileLocked(parentDirID, name)
}

func (v *Vault) findFileLocked(parentDirID, name string) (*FileInfo, error) {
	lp, encName, err := v.lookupPaths(parentDirID, name, vaultcore.EntryFile)
	if err != nil {
		return nil, err
	}

	entryInfo, err := os.Stat(lp.EntryPath)
	if os.IsNotExist(err) {
		return nil, vaulterrors.New(vaulterrors.KindNotFoundFile, name, parentDirID)
	}
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	if !lp.IsShortened {
		if entryInfo.IsDir() {
			return nil, vaulterrors.New(vaulterrors.KindNotAFile, name, parentDirID)
		}
		return &FileInfo{
			Name: name, EncryptedName: encName, EncryptedPath: lp.EntryPath,
			ContentPath: lp.ContentPath, EncryptedSize: entryInfo.Size(), IsShortened: false,
		}, nil
	}

	contentInfo, err := os.Stat(lp.ContentPath)
	if os.IsNotExist(err) {
		return nil, vaulterrors.New(vaulterrors.KindNotFoundFile, name, parentDirID)
	}
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}
	return &FileInfo{
		Name: name, EncryptedName: encName, EncryptedPath: lp.EntryPath,
		ContentPath: lp.ContentPath, EncryptedSize: contentInfo.Size(), IsShortened: true,
	}, nil
}

// FindDirectory resolves (parentDirID, name) to a subdirectory's info.
func (v *Vault) FindDirectory(parentDirID, name string) (*DirectoryInfo, error) {
	release := v.locks.DirReadLock(parentDirID)
	defer release()
	return v.findDirectoryLocked(parentDirID, name)
}

func (v *Vault) findDirectoryLocked(parentDirID, name string) (*DirectoryInfo, error) {
	lp, _, err := v.lookupPaths(parentDirID, name, vaultcore.EntryDirectory)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(lp.EntryPath); os.IsNotExist(err) {
		return nil, vaulterrors.New(vaulterrors.KindNotFoundDir, name, parentDirID)
	} else if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	childID, err := os.ReadFile(lp.ContentPath)
	if os.IsNotExist(err) {
		return nil, vaulterrors.New(vaulterrors.KindNotFoundDir, name, parentDirID)
	}
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	return &DirectoryInfo{
		Name: name, DirID: string(childID), EncryptedPath: lp.EntryPath, ParentDirID: parentDirID,
	}, nil
}

// FindSymlink resolves (parentDirID, name) to a symlink's info.
func (v *Vault) FindSymlink(parentDirID, name string) (*SymlinkInfo, error) {
	release := v.locks.DirReadLock(parentDirID)
	defer release()
	return v.findSymlinkLocked(parentDirID, name)
}

func (v *Vault) findSymlinkLocked(parentDirID, name string) (*SymlinkInfo, error) {
	lp, _, err := v.lookupPaths(parentDirID, name, vaultcore.EntrySymlink)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(lp.EntryPath); os.IsNotExist(err) {
		return nil, vaulterrors.New(vaulterrors.KindNotFoundSymlink, name, parentDirID)
	} else if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	target, err := v.decryptSymlinkTargetFile(lp.ContentPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, vaulterrors.New(vaulterrors.KindNotFoundSymlink, name, parentDirID)
	}
	if err != nil {
		return nil, err
	}

	return &SymlinkInfo{Name: name, Target: target, EncryptedPath: lp.EntryPath, IsShortened: lp.IsShortened}, nil
}
