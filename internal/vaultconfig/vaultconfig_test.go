package vaultconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
)

func TestMasterKeyFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MasterKeyFileName)

	key, err := masterkey.Generate()
	require.NoError(t, err)

	require.NoError(t, WriteMasterKey(path, []byte("hunter2"), key))

	recovered, err := UnwrapMasterKey(path, []byte("hunter2"))
	require.NoError(t, err)
	require.Equal(t, key.EncKey(), recovered.EncKey())
	require.Equal(t, key.MacKey(), recovered.MacKey())
}

func TestMasterKeyFileWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MasterKeyFileName)

	key, err := masterkey.Generate()
	require.NoError(t, err)
	require.NoError(t, WriteMasterKey(path, []byte("correct horse"), key))

	_, err = UnwrapMasterKey(path, []byte("wrong password"))
	require.Error(t, err)
}

func TestVaultConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, VaultConfigFileName)

	key, err := masterkey.Generate()
	require.NoError(t, err)

	want := VaultConfig{
		CipherCombo:         vaultcore.SivGcm,
		ShorteningThreshold: 220,
		FormatVersion:       8,
	}
	require.NoError(t, WriteVaultConfig(path, key, want))

	got, err := LoadVaultConfig(path, key)
	require.NoError(t, err)
	require.Equal(t, want, *got)
}

func TestVaultConfigWrongKeyFailsVerification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, VaultConfigFileName)

	key, err := masterkey.Generate()
	require.NoError(t, err)
	other, err := masterkey.Generate()
	require.NoError(t, err)

	require.NoError(t, WriteVaultConfig(path, key, VaultConfig{CipherCombo: vaultcore.SivGcm, ShorteningThreshold: 220}))

	_, err = LoadVaultConfig(path, other)
	require.Error(t, err)
}
