// Package vaultcore holds the pure, I/O-free logic shared by the sync and
// async vault operations frontends: translating a directory id into its
// on-disk storage path, and a (dir_id, filename) pair into its candidate
// on-disk locations under the Cryptomator shortening rule. Nothing in this
// package touches disk or blocks; it is safe to call from either frontend,
// on any goroutine, without synchronization.
package vaultcore

import (
	"path/filepath"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// HashDirIDFunc is the keyed hash of a directory id, supplied by the
// cryptoprim package with the master key already bound via closure. It
// produces a 32-character string; vaultcore only knows how to shard it
// into d/XX/YYYY....
type HashDirIDFunc func(dirID string) (string, error)

const minHashLen = 32

// CalculateDirectoryStoragePath derives "d/XX/YYYYYYYY...YYYY" (2 + 30
// characters) from the keyed hash of dirID. It is a pure function of
// (dirID, hashFn): identical inputs always yield the identical path.
func CalculateDirectoryStoragePath(dirID string, hashFn HashDirIDFunc) (string, error) {
	h, err := hashFn(dirID)
	if err != nil {
		return "", vaulterrors.Wrap(vaulterrors.KindCryptoFilename, err, "", dirID)
	}
	if len(h) < minHashLen {
		return "", vaulterrors.New(vaulterrors.KindInvalidVaultStructure, "", dirID)
	}

	return filepath.Join("d", h[0:2], h[2:minHashLen]), nil
}
