package vaultops

import (
	"os"

	"github.com/google/renameio/v2"

	"github.com/cryptovaultfs/cryptovaultfs/internal/cryptoprim"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// readFileBody reads and decrypts an AEAD file body (used for file
// contents and dirid.c9r backups; dir.c9r holds a plaintext id and skips
// this, and symlink.c9r targets go through decryptSymlinkTargetFile).
func (v *Vault) readFileBody(path string) ([]byte, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}
	plaintext, err := cryptoprim.DecryptFile(ciphertext, v.key)
	if err != nil {
		return nil, vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}
	return plaintext, nil
}

// writeFileBodyCreate encrypts plaintext and writes it directly to path,
// used when the target does not exist yet: a crash loses only the
// partial new file.
func (v *Vault) writeFileBodyCreate(path string, plaintext []byte) error {
	ciphertext, err := cryptoprim.EncryptFile(plaintext, v.key)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}
	if err := os.WriteFile(path, ciphertext, 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}
	return nil
}

// writeFileBodyOverwrite encrypts plaintext and atomically replaces an
// existing path via renameio's sibling temp file, fsync, rename —
// the "target exists" write safety policy: a crash leaves either the
// previous full content or the new full content, never a mix.
func (v *Vault) writeFileBodyOverwrite(path string, plaintext []byte) error {
	ciphertext, err := cryptoprim.EncryptFile(plaintext, v.key)
	if err != nil {
		return vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}
	if err := renameio.WriteFile(path, ciphertext, 0o600); err != nil {
		return vaulterrors.Wrap(vaulterrors.KindAtomicWriteFailed, err, "", "")
	}
	return nil
}

// decryptSymlinkTargetFile reads and decrypts a symlink.c9r content file.
func (v *Vault) decryptSymlinkTargetFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", vaulterrors.Wrap(vaulterrors.KindIO, err, "", "")
	}
	target, err := cryptoprim.DecryptTarget(raw, v.key)
	if err != nil {
		return "", vaulterrors.Wrap(vaulterrors.KindCryptoDecrypt, err, "", "")
	}
	return target, nil
}
