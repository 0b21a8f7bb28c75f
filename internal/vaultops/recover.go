package vaultops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// RecoverDirectoryID reads and decrypts dirID's own dirid.c9r backup,
// returning the id it claims to be. Used to reassociate an orphaned
// storage area (one whose parent-side entry was lost or corrupted) back
// into the tree, and to detect a storage area whose backup disagrees with
// the id used to address it.
func (v *Vault) RecoverDirectoryID(dirID string) (string, error) {
	release := v.locks.DirReadLock(dirID)
	defer release()

	storage, err := v.storageDir(dirID)
	if err != nil {
		return "", err
	}
	plaintext, err := v.readFileBody(vaultcore.DirIDBackupPath(storage))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(plaintext)), nil
}

// VerifyDirectoryID checks dirID's on-disk backup against the id its
// storage path was computed from, returning KindInvalidVaultStructure on
// mismatch — a hashing collision, or storage moved outside the vault's own
// operations, would otherwise go undetected.
func (v *Vault) VerifyDirectoryID(dirID string) error {
	recovered, err := v.RecoverDirectoryID(dirID)
	if err != nil {
		return err
	}
	if recovered != dirID {
		return vaulterrors.New(vaulterrors.KindInvalidVaultStructure, recovered, dirID)
	}
	return nil
}

// RecoveredDirectory pairs a storage area found by walking the vault's raw
// d/ tree with the directory id its dirid.c9r backup claims to own.
type RecoveredDirectory struct {
	StoragePath string
	DirID       string
}

// RecoverDirectoryTree walks every storage area under the vault's d/
// directory and recovers the id each one's dirid.c9r backup claims,
// independent of whether any parent-side entry still points at it. This is
// how a storage area orphaned by an interrupted move or delete — one no
// lookup starting from root can reach — gets found again: the backup ties
// it back to the dirID it belongs to, even though it was found by
// directory listing rather than by resolving a path. A storage area with
// no backup (or a corrupted one) is skipped rather than failing the whole
// scan.
func (v *Vault) RecoverDirectoryTree() ([]RecoveredDirectory, error) {
	dDir := filepath.Join(v.path, "d")
	prefixes, err := os.ReadDir(dDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}

	var recovered []RecoveredDirectory
	for _, prefix := range prefixes {
		if !prefix.IsDir() {
			continue
		}
		prefixPath := filepath.Join(dDir, prefix.Name())
		storages, err := os.ReadDir(prefixPath)
		if err != nil {
			return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
		}
		for _, storage := range storages {
			if !storage.IsDir() {
				continue
			}
			storagePath := filepath.Join(prefixPath, storage.Name())
			plaintext, err := v.readFileBody(vaultcore.DirIDBackupPath(storagePath))
			if err != nil {
				continue
			}
			recovered = append(recovered, RecoveredDirectory{
				StoragePath: storagePath,
				DirID:       strings.TrimSpace(string(plaintext)),
			})
		}
	}
	return recovered, nil
}
