package vaultconfig

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"

	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
)

// masterkeyFile mirrors the JSON layout of masterkey.cryptomator.
type masterkeyFile struct {
	Version          int    `json:"version"`
	ScryptSalt       string `json:"scryptSalt"`
	ScryptCostParam  int    `json:"scryptCostParam"`
	ScryptBlockSize  int    `json:"scryptBlockSize"`
	PrimaryMasterKey string `json:"primaryMasterKey"`
	HMACMasterKey    string `json:"hmacMasterKey"`
	VersionMac       string `json:"versionMac"`
}

const (
	defaultScryptCostParam = 1 << 15
	defaultScryptBlockSize = 8
	scryptParallelism      = 1
	scryptSaltLen          = 8
)

// UnwrapMasterKey reads masterkey.cryptomator at path, derives the KEK from
// password via scrypt, and unwraps the enc/MAC key pair.
func UnwrapMasterKey(path string, password []byte) (*masterkey.Key, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: read masterkey file: %w", err)
	}

	var mkf masterkeyFile
	if err := json.Unmarshal(raw, &mkf); err != nil {
		return nil, fmt.Errorf("vaultconfig: parse masterkey file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(mkf.ScryptSalt)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: decode scrypt salt: %w", err)
	}
	wrappedEnc, err := base64.StdEncoding.DecodeString(mkf.PrimaryMasterKey)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: decode primary key: %w", err)
	}
	wrappedMac, err := base64.StdEncoding.DecodeString(mkf.HMACMasterKey)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: decode hmac key: %w", err)
	}

	kek, err := scrypt.Key(password, salt, mkf.ScryptCostParam, mkf.ScryptBlockSize, scryptParallelism, masterkey.EncKeyLen)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: derive kek: %w", err)
	}

	encKey, err := keyUnwrap(kek, wrappedEnc)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: unwrap primary key (wrong password?): %w", err)
	}
	macKey, err := keyUnwrap(kek, wrappedMac)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: unwrap hmac key (wrong password?): %w", err)
	}

	return masterkey.New(encKey, macKey)
}

// WriteMasterKey creates a fresh masterkey.cryptomator wrapping key under a
// newly scrypt-derived KEK from password, used when initializing a vault.
func WriteMasterKey(path string, password []byte, key *masterkey.Key) error {
	salt := make([]byte, scryptSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("vaultconfig: generate scrypt salt: %w", err)
	}

	kek, err := scrypt.Key(password, salt, defaultScryptCostParam, defaultScryptBlockSize, scryptParallelism, masterkey.EncKeyLen)
	if err != nil {
		return fmt.Errorf("vaultconfig: derive kek: %w", err)
	}

	wrappedEnc, err := keyWrap(kek, key.EncKey())
	if err != nil {
		return fmt.Errorf("vaultconfig: wrap primary key: %w", err)
	}
	wrappedMac, err := keyWrap(kek, key.MacKey())
	if err != nil {
		return fmt.Errorf("vaultconfig: wrap hmac key: %w", err)
	}

	mkf := masterkeyFile{
		Version:          999,
		ScryptSalt:       base64.StdEncoding.EncodeToString(salt),
		ScryptCostParam:  defaultScryptCostParam,
		ScryptBlockSize:  defaultScryptBlockSize,
		PrimaryMasterKey: base64.StdEncoding.EncodeToString(wrappedEnc),
		HMACMasterKey:    base64.StdEncoding.EncodeToString(wrappedMac),
	}

	out, err := json.MarshalIndent(mkf, "", "  ")
	if err != nil {
		return fmt.Errorf("vaultconfig: encode masterkey file: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}
