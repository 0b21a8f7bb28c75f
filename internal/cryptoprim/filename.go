package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// syntheticIV derives a deterministic 16-byte IV from the MAC key, the
// parent dir id (associated data) and the cleartext, in the spirit of
// RFC 5297 SIV: the same (key, associated data, plaintext) always yields
// the same IV, and the IV authenticates both inputs.
func syntheticIV(macKey []byte, dirID, plaintext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write([]byte{byte(len(dirID) >> 24), byte(len(dirID) >> 16), byte(len(dirID) >> 8), byte(len(dirID))})
	mac.Write(dirID)
	mac.Write(plaintext)
	sum := mac.Sum(nil)
	return sum[:aes.BlockSize]
}

// EncryptFilename deterministically encrypts name under (key, parentDirID)
// as associated data, so that re-encrypting the same name under the same
// parent always yields the same ciphertext, without ever needing to decrypt
// to compare names.
func EncryptFilename(name, parentDirID string, key *masterkey.Key) (string, error) {
	plaintext := []byte(name)
	iv := syntheticIV(key.MacKey(), []byte(parentDirID), plaintext)

	block, err := aes.NewCipher(key.EncKey())
	if err != nil {
		return "", vaulterrors.Wrap(vaulterrors.KindCryptoFilename, err, name, parentDirID)
	}

	ciphertext := make([]byte, len(plaintext))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(ciphertext, plaintext)

	out := append(iv, ciphertext...)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// DecryptFilename reverses EncryptFilename, verifying that re-encrypting
// the recovered plaintext under the same (key, parentDirID) reproduces the
// same IV — the SIV construction's implicit authentication check.
func DecryptFilename(encryptedName, parentDirID string, key *masterkey.Key) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encryptedName)
	if err != nil {
		return "", vaulterrors.Wrap(vaulterrors.KindCryptoFilename, err, encryptedName, parentDirID)
	}
	if len(raw) < aes.BlockSize {
		return "", vaulterrors.New(vaulterrors.KindCryptoFilename, encryptedName, parentDirID)
	}

	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]

	block, err := aes.NewCipher(key.EncKey())
	if err != nil {
		return "", vaulterrors.Wrap(vaulterrors.KindCryptoFilename, err, encryptedName, parentDirID)
	}

	plaintext := make([]byte, len(ciphertext))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(plaintext, ciphertext)

	expectedIV := syntheticIV(key.MacKey(), []byte(parentDirID), plaintext)
	if !hmac.Equal(iv, expectedIV) {
		return "", vaulterrors.New(vaulterrors.KindCryptoFilename, encryptedName, parentDirID)
	}

	return string(plaintext), nil
}

// EncryptTarget authenticated-encrypts a symlink target string the same way
// a file body's single chunk would be (no associated dir id: symlink
// targets are not deterministically named).
func EncryptTarget(target string, key *masterkey.Key) ([]byte, error) {
	return EncryptFile([]byte(target), key)
}

// DecryptTarget reverses EncryptTarget.
func DecryptTarget(ciphertext []byte, key *masterkey.Key) (string, error) {
	pt, err := DecryptFile(ciphertext, key)
	if err != nil {
		return "", fmt.Errorf("decrypt symlink target: %w", err)
	}
	return string(pt), nil
}
