// Package cryptoprim implements the vault's AEAD/SIV primitives: file body
// encryption, deterministic filename encryption, and directory id hashing.
// vaultcore and vaultops depend only on the function-typed signatures these
// expose (see vaultcore.HashDirIDFunc, vaultcore.HashNameFunc); this package
// provides the concrete bodies. Every function here is pure CPU-bound work
// and never blocks.
package cryptoprim

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"strings"

	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
)

// HashDirID is the keyed hash of a directory id used to compute its storage
// shard. It is deterministic and produces a 32-character base32 string,
// matching the real format's use of a keyed hash truncated to 32 chars.
func HashDirID(dirID string, key *masterkey.Key) (string, error) {
	mac := hmac.New(sha256.New, key.MacKey())
	mac.Write([]byte(dirID))
	sum := mac.Sum(nil)

	enc := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum)
	enc = strings.ToUpper(enc)
	if len(enc) < 32 {
		// sha256 -> 32 bytes -> 52 base32 chars, so this cannot happen in
		// practice; guarded defensively since vaultcore depends on length.
		for len(enc) < 32 {
			enc += "A"
		}
	}
	return enc[:32], nil
}

// HashEncryptedName hashes an over-threshold encrypted filename to name its
// shortened-entry shell directory.
func HashEncryptedName(encryptedName string, key *masterkey.Key) (string, error) {
	mac := hmac.New(sha256.New, key.MacKey())
	mac.Write([]byte(encryptedName))
	sum := mac.Sum(nil)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum), nil
}
