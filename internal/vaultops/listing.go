package vaultops

import (
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// maxConcurrentEntryDecrypt bounds how many directory entries' names (and,
// for symlinks, targets) are decrypted concurrently during one listing —
// the CPU-bound step that dominates a large directory's latency, so it is
// worth fanning out even though the scan itself is a single os.ReadDir.
const maxConcurrentEntryDecrypt = 32

// ListingResult is the categorized result of scanning one directory's
// storage area, used by list_all/readdirplus as well as the individual
// ListFiles/ListDirectories/ListSymlinks calls.
type ListingResult struct {
	Files       []FileInfo
	Directories []DirectoryInfo
	Symlinks    []SymlinkInfo
}

// ListAll scans dirID's storage area once and categorizes every entry,
// grounded on the FUSE adapter's readdirplus needing files+dirs+symlinks in
// a single pass rather than three redundant directory scans.
func (v *Vault) ListAll(dirID string) (ListingResult, error) {
	release := v.locks.DirReadLock(dirID)
	defer release()
	return v.listAllLocked(dirID)
}

func (v *Vault) listAllLocked(dirID string) (ListingResult, error) {
	storage, err := v.storageDir(dirID)
	if err != nil {
		return ListingResult{}, err
	}

	entries, err := os.ReadDir(storage)
	if os.IsNotExist(err) {
		return ListingResult{}, vaulterrors.New(vaulterrors.KindNotFoundDir, "", dirID)
	}
	if err != nil {
		return ListingResult{}, vaulterrors.Wrap(vaulterrors.KindIO, err, "", dirID)
	}

	var (
		result ListingResult
		mu     sync.Mutex
	)
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentEntryDecrypt)

	for _, e := range entries {
		name := e.Name()
		switch {
		case name == vaultcore.DirIDBackupName:
			continue
		case vaultcore.IsRegularEntry(name):
			g.Go(func() error {
				var local ListingResult
				if err := v.categorizeRegular(storage, name, dirID, &local); err != nil {
					return err
				}
				mu.Lock()
				appendListing(&result, local)
				mu.Unlock()
				return nil
			})
		case vaultcore.IsShortenedEntry(name):
			g.Go(func() error {
				var local ListingResult
				if err := v.categorizeShortened(storage, name, dirID, &local); err != nil {
					return err
				}
				mu.Lock()
				appendListing(&result, local)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return ListingResult{}, err
	}
	return result, nil
}

func appendListing(dst *ListingResult, src ListingResult) {
	dst.Files = append(dst.Files, src.Files...)
	dst.Directories = append(dst.Directories, src.Directories...)
	dst.Symlinks = append(dst.Symlinks, src.Symlinks...)
}

func (v *Vault) categorizeRegular(storage, name, parentDirID string, result *ListingResult) error {
	entryPath := filepath.Join(storage, name)
	info, err := os.Stat(entryPath)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, name, parentDirID)
	}

	encName := name[:len(name)-len(vaultcore.RegularSuffix)]
	cleartext, err := v.decryptName(encName, parentDirID)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindCryptoFilename, err, encName, parentDirID)
	}

	if !info.IsDir() {
		result.Files = append(result.Files, FileInfo{
			Name:          cleartext,
			EncryptedName: encName,
			EncryptedPath: entryPath,
			ContentPath:   entryPath,
			EncryptedSize: info.Size(),
			IsShortened:   false,
		})
		return nil
	}

	if err := v.appendContainerEntry(entryPath, cleartext, parentDirID, false, result); err != nil {
		return err
	}
	return nil
}

func (v *Vault) categorizeShortened(storage, name, parentDirID string, result *ListingResult) error {
	entryPath := filepath.Join(storage, name)
	fullNameBytes, err := os.ReadFile(vaultcore.ShortNamePath(entryPath))
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindInvalidVaultStructure, err, name, parentDirID)
	}
	encName := string(fullNameBytes)

	cleartext, err := v.decryptName(encName, parentDirID)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindCryptoFilename, err, encName, parentDirID)
	}

	return v.appendContainerEntry(entryPath, cleartext, parentDirID, true, result)
}

// appendContainerEntry inspects a regular-directory or shortened-entry
// container to tell a directory entry from a symlink entry from a
// shortened file entry, and appends to the matching slice.
func (v *Vault) appendContainerEntry(entryPath, cleartext, parentDirID string, isShortened bool, result *ListingResult) error {
	dirContent := filepath.Join(entryPath, vaultcore.DirContentName)
	if _, err := os.Stat(dirContent); err == nil {
		childID, err := os.ReadFile(dirContent)
		if err != nil {
			return vaulterrors.Wrap(vaulterrors.KindIO, err, cleartext, parentDirID)
		}
		result.Directories = append(result.Directories, DirectoryInfo{
			Name:          cleartext,
			DirID:         string(childID),
			EncryptedPath: entryPath,
			ParentDirID:   parentDirID,
		})
		return nil
	}

	symlinkContent := filepath.Join(entryPath, vaultcore.SymlinkContentName)
	if _, err := os.Stat(symlinkContent); err == nil {
		target, err := v.decryptSymlinkTargetFile(symlinkContent)
		if err != nil {
			return err
		}
		result.Symlinks = append(result.Symlinks, SymlinkInfo{
			Name:          cleartext,
			Target:        target,
			EncryptedPath: entryPath,
			IsShortened:   isShortened,
		})
		return nil
	}

	fileContent := filepath.Join(entryPath, vaultcore.FileContentName)
	info, err := os.Stat(fileContent)
	if err != nil {
		return vaulterrors.New(vaulterrors.KindInvalidVaultStructure, cleartext, parentDirID)
	}
	result.Files = append(result.Files, FileInfo{
		Name:          cleartext,
		EncryptedPath: entryPath,
		ContentPath:   fileContent,
		EncryptedSize: info.Size(),
		IsShortened:   isShortened,
	})
	return nil
}

// ListFiles returns every file directly inside dirID.
func (v *Vault) ListFiles(dirID string) ([]FileInfo, error) {
	res, err := v.ListAll(dirID)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// ListDirectories returns every subdirectory directly inside dirID.
func (v *Vault) ListDirectories(dirID string) ([]DirectoryInfo, error) {
	res, err := v.ListAll(dirID)
	if err != nil {
		return nil, err
	}
	return res.Directories, nil
}

// ListSymlinks returns every symlink directly inside dirID.
func (v *Vault) ListSymlinks(dirID string) ([]SymlinkInfo, error) {
	res, err := v.ListAll(dirID)
	if err != nil {
		return nil, err
	}
	return res.Symlinks, nil
}
