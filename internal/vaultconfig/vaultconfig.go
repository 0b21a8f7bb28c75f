// Package vaultconfig reads the two files that sit outside the encrypted
// directory tree: vault.cryptomator (a signed JWT carrying the cipher combo
// and shortening threshold) and masterkey.cryptomator (the wrapped key
// pair). Both are parsed once at mount time; nothing here is on any hot
// path.
package vaultconfig

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
)

const (
	VaultConfigFileName = "vault.cryptomator"
	MasterKeyFileName   = "masterkey.cryptomator"
)

// DefaultShorteningThreshold matches the real format's default; vaults may
// override it via the shortening_threshold claim.
const DefaultShorteningThreshold = 220

// VaultConfig is the decoded, validated content of vault.cryptomator.
type VaultConfig struct {
	CipherCombo         vaultcore.CipherCombo
	ShorteningThreshold int
	FormatVersion       int
}

type vaultClaims struct {
	jwt.RegisteredClaims
	Format              int    `json:"format"`
	CipherCombo         string `json:"cipherCombo"`
	ShorteningThreshold int    `json:"shorteningThreshold"`
}

// LoadVaultConfig parses and signature-verifies vault.cryptomator at path.
// The signing key is the vault's own key material: the same HMAC key used
// to authenticate directory ids and file chunks signs this file, so a vault
// opened with the wrong password fails here with a signature error before
// any directory is touched.
func LoadVaultConfig(path string, key *masterkey.Key) (*VaultConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vaultconfig: read vault config: %w", err)
	}

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("vaultconfig: unexpected signing method %v", t.Header["alg"])
		}
		return signingKey(key), nil
	}

	var claims vaultClaims
	if _, err := jwt.ParseWithClaims(string(raw), &claims, keyFunc, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})); err != nil {
		return nil, fmt.Errorf("vaultconfig: verify vault config: %w", err)
	}

	combo, ok := vaultcore.ParseCipherCombo(claims.CipherCombo)
	if !ok {
		return nil, fmt.Errorf("vaultconfig: unknown cipher combo %q", claims.CipherCombo)
	}

	threshold := claims.ShorteningThreshold
	if threshold <= 0 {
		threshold = DefaultShorteningThreshold
	}

	return &VaultConfig{
		CipherCombo:         combo,
		ShorteningThreshold: threshold,
		FormatVersion:       claims.Format,
	}, nil
}

// WriteVaultConfig signs and writes a fresh vault.cryptomator, used when
// initializing a vault.
func WriteVaultConfig(path string, key *masterkey.Key, cfg VaultConfig) error {
	claims := vaultClaims{
		Format:              cfg.FormatVersion,
		CipherCombo:         cfg.CipherCombo.String(),
		ShorteningThreshold: cfg.ShorteningThreshold,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey(key))
	if err != nil {
		return fmt.Errorf("vaultconfig: sign vault config: %w", err)
	}
	return os.WriteFile(path, []byte(signed), 0o644)
}

// signingKey concatenates the enc and MAC keys as the HMAC secret, matching
// the real format's use of the raw 64-byte key material to sign this file.
func signingKey(key *masterkey.Key) []byte {
	out := make([]byte, 0, masterkey.EncKeyLen+masterkey.MacKeyLen)
	out = append(out, key.EncKey()...)
	out = append(out, key.MacKey()...)
	return out
}
