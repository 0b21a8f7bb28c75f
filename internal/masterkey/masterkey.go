// Package masterkey holds the vault's decrypted key material: an AES
// encryption key and a MAC key, unwrapped once at vault open and shared
// immutably for the lifetime of the process. It never mutates after
// construction; Clone returns an independent copy and is kept fallible so
// a future memory-protection layer (mlock/mprotect) can fail it cleanly.
package masterkey

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	EncKeyLen = 32
	MacKeyLen = 32
)

// Key is the opaque master key handle. Copying a Key by value is forbidden
// in spirit (use Clone); the struct is unexported-field-only so callers are
// forced through the constructors below.
type Key struct {
	encKey [EncKeyLen]byte
	macKey [MacKeyLen]byte
}

// New wraps raw key bytes already unwrapped from masterkey.cryptomator.
func New(encKey, macKey []byte) (*Key, error) {
	if len(encKey) != EncKeyLen || len(macKey) != MacKeyLen {
		return nil, fmt.Errorf("masterkey: invalid key lengths (%d, %d)", len(encKey), len(macKey))
	}
	k := &Key{}
	copy(k.encKey[:], encKey)
	copy(k.macKey[:], macKey)
	return k, nil
}

// Generate creates a fresh random key pair, used when initializing a new
// vault.
func Generate() (*Key, error) {
	k := &Key{}
	if _, err := rand.Read(k.encKey[:]); err != nil {
		return nil, fmt.Errorf("masterkey: generate enc key: %w", err)
	}
	if _, err := rand.Read(k.macKey[:]); err != nil {
		return nil, fmt.Errorf("masterkey: generate mac key: %w", err)
	}
	return k, nil
}

// Clone returns an independent copy of the key material. The signature
// stays fallible even though this implementation has no mlock/mprotect
// layer to fail against, so callers never assume infallibility.
func (k *Key) Clone() (*Key, error) {
	clone := &Key{}
	copy(clone.encKey[:], k.encKey[:])
	copy(clone.macKey[:], k.macKey[:])
	return clone, nil
}

// EncKey returns the raw encryption key bytes. Callers must not retain or
// mutate the returned slice beyond the call.
func (k *Key) EncKey() []byte { return k.encKey[:] }

// MacKey returns the raw MAC key bytes. Callers must not retain or mutate
// the returned slice beyond the call.
func (k *Key) MacKey() []byte { return k.macKey[:] }

// Destroy best-effort zeroes the key material. Called at vault close.
func (k *Key) Destroy() {
	for i := range k.encKey {
		k.encKey[i] = 0
	}
	for i := range k.macKey {
		k.macKey[i] = 0
	}
}

// DeriveKEK derives a key-encryption-key from a password using argon2id.
// internal/vaultconfig does not call it: masterkey.cryptomator files are
// both read and written there with a scrypt-derived KEK.
func DeriveKEK(password, salt []byte, keyLen uint32) []byte {
	const (
		time    = 1
		memory  = 64 * 1024
		threads = 4
	)
	return argon2.IDKey(password, salt, time, memory, threads, keyLen)
}
