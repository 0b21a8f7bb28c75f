// Package vaultops implements the synchronous vault operations contract:
// list/find/read/write for files, directories and symlinks; rename, move,
// and atomic swap; recursive delete; directory id recovery. It sits on
// internal/vaultcore for pure path math, internal/cryptoprim for the AEAD
// primitives, and internal/lockmgr for per-resource locking, and holds no
// FUSE- or inode-specific state — internal/fuseadapter is the only caller
// that knows about inodes.
//
// One struct embedding its dependencies (root path, key, cipher combo,
// lock manager) plus pure request/response methods over one on-disk
// vault directory.
package vaultops

import (
	"os"
	"path/filepath"

	"github.com/cryptovaultfs/cryptovaultfs/internal/cryptoprim"
	"github.com/cryptovaultfs/cryptovaultfs/internal/lockmgr"
	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
)

// RootDirID is the empty string, denoting the vault's root directory.
const RootDirID = ""

// Vault is a handle to one open Cryptomator-format vault. The zero value is
// not usable; construct with Open.
type Vault struct {
	path                string
	key                 *masterkey.Key
	cipherCombo         vaultcore.CipherCombo
	shorteningThreshold int
	locks               *lockmgr.Manager
}

// Open constructs a Vault handle over an already-resolved vault directory,
// already-unwrapped master key, and already-parsed config. Parsing
// vault.cryptomator/masterkey.cryptomator is internal/vaultconfig's job,
// kept separate since it is explicitly out of scope for this package.
func Open(path string, key *masterkey.Key, cipherCombo vaultcore.CipherCombo, shorteningThreshold int, locks *lockmgr.Manager) *Vault {
	return &Vault{
		path:                path,
		key:                 key,
		cipherCombo:         cipherCombo,
		shorteningThreshold: shorteningThreshold,
		locks:               locks,
	}
}

// Path returns the vault's root directory on the backing store.
func (v *Vault) Path() string { return v.path }

// Locks returns the vault's shared lock manager, used by the async frontend
// and the FUSE adapter to participate in the same lock ordering.
func (v *Vault) Locks() *lockmgr.Manager { return v.locks }

// Key returns the vault's unwrapped master key, used by callers (the FUSE
// adapter's unlocked streaming reader) that need to decrypt a file body
// directly off an open os.File rather than through ReadFile.
func (v *Vault) Key() *masterkey.Key { return v.key }

// EnsureRoot creates the root directory's storage area if it does not
// already exist. A freshly initialized vault has no root dirid.c9r backup
// (root has no parent entry to recover from), so this only makes the
// sharded "d/XX/YYYY..." directory itself, mirroring what vault
// initialization tooling does once before the first mount.
func (v *Vault) EnsureRoot() error {
	root, err := v.storageDir(RootDirID)
	if err != nil {
		return err
	}
	return os.MkdirAll(root, 0o700)
}

func (v *Vault) hashDirID(dirID string) (string, error) {
	return cryptoprim.HashDirID(dirID, v.key)
}

func (v *Vault) hashEncryptedName(encryptedName string) (string, error) {
	return cryptoprim.HashEncryptedName(encryptedName, v.key)
}

// storageDir returns the absolute on-disk directory holding dirID's entries.
func (v *Vault) storageDir(dirID string) (string, error) {
	rel, err := vaultcore.CalculateDirectoryStoragePath(dirID, v.hashDirID)
	if err != nil {
		return "", err
	}
	return filepath.Join(v.path, rel), nil
}

func (v *Vault) encryptName(name, parentDirID string) (string, error) {
	return cryptoprim.EncryptFilename(name, parentDirID, v.key)
}

func (v *Vault) decryptName(encryptedName, parentDirID string) (string, error) {
	return cryptoprim.DecryptFilename(encryptedName, parentDirID, v.key)
}

// lookupPaths computes the candidate on-disk paths for (parentDirID, name)
// of the given kind, relative to the vault root.
func (v *Vault) lookupPaths(parentDirID, name string, kind vaultcore.EntryKind) (vaultcore.LookupPaths, string, error) {
	storage, err := v.storageDir(parentDirID)
	if err != nil {
		return vaultcore.LookupPaths{}, "", err
	}
	encName, err := v.encryptName(name, parentDirID)
	if err != nil {
		return vaultcore.LookupPaths{}, "", err
	}
	lp, err := vaultcore.CalculateLookupPaths(storage, encName, v.shorteningThreshold, kind, v.hashEncryptedName)
	return lp, encName, err
}
