package asyncvault

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cryptovaultfs/cryptovaultfs/internal/lockmgr"
	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

func newTestAsyncVault(t *testing.T) *Vault {
	t.Helper()
	dir := t.TempDir()
	key, err := masterkey.Generate()
	require.NoError(t, err)

	sv := vaultops.Open(dir, key, vaultcore.SivGcm, 220, lockmgr.New())
	require.NoError(t, sv.EnsureRoot())

	return New(sv, nil)
}

func TestAsyncWriteThenReadFastPath(t *testing.T) {
	v := newTestAsyncVault(t)
	ctx := context.Background()

	require.NoError(t, v.WriteFile(ctx, vaultops.RootDirID, "hello.txt", []byte("hi")))

	got, err := v.ReadFile(ctx, vaultops.RootDirID, "hello.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), got)
}

func TestAsyncReadRespectsCancellation(t *testing.T) {
	v := newTestAsyncVault(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := v.sync.Locks().DirWriteLock(vaultops.RootDirID)
	defer release()

	_, err := v.ReadFile(ctx, vaultops.RootDirID, "missing.txt")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAsyncLookupFindsCreatedDirectory(t *testing.T) {
	v := newTestAsyncVault(t)
	ctx := context.Background()

	_, err := v.CreateDirectory(ctx, vaultops.RootDirID, "docs")
	require.NoError(t, err)

	result, err := v.Lookup(ctx, vaultops.RootDirID, "docs")
	require.NoError(t, err)
	require.NotNil(t, result.Directory)
	require.Nil(t, result.File)
	require.Nil(t, result.Symlink)
}

func TestAsyncListAll(t *testing.T) {
	v := newTestAsyncVault(t)
	ctx := context.Background()

	require.NoError(t, v.WriteFile(ctx, vaultops.RootDirID, "a.txt", []byte("x")))
	_, err := v.CreateDirectory(ctx, vaultops.RootDirID, "sub")
	require.NoError(t, err)

	listing, err := v.ListAll(ctx, vaultops.RootDirID)
	require.NoError(t, err)
	require.Len(t, listing.Files, 1)
	require.Len(t, listing.Directories, 1)
}

func TestAsyncSwapFiles(t *testing.T) {
	v := newTestAsyncVault(t)
	ctx := context.Background()

	require.NoError(t, v.WriteFile(ctx, vaultops.RootDirID, "a.txt", []byte("A")))
	require.NoError(t, v.WriteFile(ctx, vaultops.RootDirID, "b.txt", []byte("B")))
	require.NoError(t, v.AtomicSwapFiles(ctx, vaultops.RootDirID, "a.txt", vaultops.RootDirID, "b.txt"))

	gotA, err := v.ReadFile(ctx, vaultops.RootDirID, "a.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("B"), gotA)
}

func TestAsyncConcurrentWritesToSameEntrySerialize(t *testing.T) {
	v := newTestAsyncVault(t)
	ctx := context.Background()
	require.NoError(t, v.WriteFile(ctx, vaultops.RootDirID, "shared.txt", []byte("init")))

	done := make(chan error, 2)
	go func() { done <- v.WriteFile(ctx, vaultops.RootDirID, "shared.txt", []byte("writer-one")) }()
	go func() { done <- v.WriteFile(ctx, vaultops.RootDirID, "shared.txt", []byte("writer-two-longer")) }()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for concurrent writes")
		}
	}

	got, err := v.ReadFile(ctx, vaultops.RootDirID, "shared.txt")
	require.NoError(t, err)
	require.Contains(t, []string{"writer-one", "writer-two-longer"}, string(got))
}
