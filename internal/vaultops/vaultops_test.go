package vaultops

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptovaultfs/cryptovaultfs/internal/lockmgr"
	"github.com/cryptovaultfs/cryptovaultfs/internal/masterkey"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultcore"
)

// newTestVault builds a Vault over a fresh temp directory with an
// initialized root storage area, mirroring what vaultconfig.LoadVaultConfig
// plus a root-creation step would set up at mount time.
func newTestVault(t *testing.T) *Vault {
	t.Helper()
	dir := t.TempDir()
	key, err := masterkey.Generate()
	require.NoError(t, err)

	v := Open(dir, key, vaultcore.SivGcm, 220, lockmgr.New())
	require.NoError(t, v.EnsureRoot())
	return v
}

func TestWriteReadFileRoundTrip(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteFile(RootDirID, "hello.txt", []byte("hello world")))

	got, err := v.ReadFile(RootDirID, "hello.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), got)
}

func TestWriteFileOverwriteUsesAtomicPath(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteFile(RootDirID, "a.txt", []byte("first")))
	require.NoError(t, v.WriteFile(RootDirID, "a.txt", []byte("second, and longer")))

	got, err := v.ReadFile(RootDirID, "a.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("second, and longer"), got)
}

func TestFindFileNotFound(t *testing.T) {
	v := newTestVault(t)

	_, err := v.FindFile(RootDirID, "missing.txt")
	require.Error(t, err)
}

func TestCreateDirectoryAndListAll(t *testing.T) {
	v := newTestVault(t)

	sub, err := v.CreateDirectory(RootDirID, "docs")
	require.NoError(t, err)
	require.NotEmpty(t, sub.DirID)

	require.NoError(t, v.WriteFile(sub.DirID, "note.txt", []byte("a note")))
	_, err = v.CreateSymlink(sub.DirID, "link", "note.txt")
	require.NoError(t, err)
	_, err = v.CreateDirectory(sub.DirID, "nested")
	require.NoError(t, err)

	listing, err := v.ListAll(sub.DirID)
	require.NoError(t, err)
	require.Len(t, listing.Files, 1)
	require.Len(t, listing.Symlinks, 1)
	require.Len(t, listing.Directories, 1)
	require.Equal(t, "note.txt", listing.Files[0].Name)
	require.Equal(t, "link", listing.Symlinks[0].Name)
	require.Equal(t, "nested", listing.Directories[0].Name)
}

func TestCreateDirectoryAlreadyExists(t *testing.T) {
	v := newTestVault(t)

	_, err := v.CreateDirectory(RootDirID, "docs")
	require.NoError(t, err)
	_, err = v.CreateDirectory(RootDirID, "docs")
	require.Error(t, err)
}

func TestDeleteEmptyDirectory(t *testing.T) {
	v := newTestVault(t)

	_, err := v.CreateDirectory(RootDirID, "empty")
	require.NoError(t, err)
	require.NoError(t, v.DeleteDirectory(RootDirID, "empty"))

	_, err = v.FindDirectory(RootDirID, "empty")
	require.Error(t, err)
}

func TestDeleteNonEmptyDirectoryFails(t *testing.T) {
	v := newTestVault(t)

	sub, err := v.CreateDirectory(RootDirID, "docs")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(sub.DirID, "note.txt", []byte("x")))

	err = v.DeleteDirectory(RootDirID, "docs")
	require.Error(t, err)
}

func TestDeleteRecursiveRemovesWholeSubtree(t *testing.T) {
	v := newTestVault(t)

	sub, err := v.CreateDirectory(RootDirID, "docs")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(sub.DirID, "note.txt", []byte("x")))
	nested, err := v.CreateDirectory(sub.DirID, "nested")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(nested.DirID, "inner.txt", []byte("y")))

	require.NoError(t, v.DeleteRecursive(RootDirID, "docs"))

	_, err = v.FindDirectory(RootDirID, "docs")
	require.Error(t, err)
}

func TestRenameFile(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteFile(RootDirID, "old.txt", []byte("body")))
	require.NoError(t, v.RenameFile(RootDirID, "old.txt", "new.txt"))

	_, err := v.FindFile(RootDirID, "old.txt")
	require.Error(t, err)

	got, err := v.ReadFile(RootDirID, "new.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("body"), got)
}

func TestRenameFileSameNameRejected(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.WriteFile(RootDirID, "a.txt", []byte("x")))
	err := v.RenameFile(RootDirID, "a.txt", "a.txt")
	require.Error(t, err)
}

func TestMoveFileAcrossDirectories(t *testing.T) {
	v := newTestVault(t)

	src, err := v.CreateDirectory(RootDirID, "src")
	require.NoError(t, err)
	dst, err := v.CreateDirectory(RootDirID, "dst")
	require.NoError(t, err)

	require.NoError(t, v.WriteFile(src.DirID, "f.txt", []byte("payload")))
	require.NoError(t, v.MoveFile(src.DirID, "f.txt", dst.DirID, "f.txt"))

	_, err = v.FindFile(src.DirID, "f.txt")
	require.Error(t, err)

	got, err := v.ReadFile(dst.DirID, "f.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestMoveDirectoryPreservesDescendants(t *testing.T) {
	v := newTestVault(t)

	src, err := v.CreateDirectory(RootDirID, "src")
	require.NoError(t, err)
	dst, err := v.CreateDirectory(RootDirID, "dst")
	require.NoError(t, err)
	moved, err := v.CreateDirectory(src.DirID, "moveme")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(moved.DirID, "inner.txt", []byte("z")))

	require.NoError(t, v.MoveDirectory(src.DirID, "moveme", dst.DirID, "moveme"))

	found, err := v.FindDirectory(dst.DirID, "moveme")
	require.NoError(t, err)
	require.Equal(t, moved.DirID, found.DirID)

	got, err := v.ReadFile(found.DirID, "inner.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("z"), got)
}

func TestRenameDirectory(t *testing.T) {
	v := newTestVault(t)

	sub, err := v.CreateDirectory(RootDirID, "old")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile(sub.DirID, "inner.txt", []byte("z")))

	require.NoError(t, v.RenameDirectory(RootDirID, "old", "new"))

	_, err = v.FindDirectory(RootDirID, "old")
	require.Error(t, err)

	found, err := v.FindDirectory(RootDirID, "new")
	require.NoError(t, err)
	require.Equal(t, sub.DirID, found.DirID)

	got, err := v.ReadFile(found.DirID, "inner.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("z"), got)
}

func TestRenameSymlink(t *testing.T) {
	v := newTestVault(t)

	_, err := v.CreateSymlink(RootDirID, "old-link", "target.txt")
	require.NoError(t, err)

	require.NoError(t, v.RenameSymlink(RootDirID, "old-link", "new-link"))

	_, err = v.FindSymlink(RootDirID, "old-link")
	require.Error(t, err)

	found, err := v.FindSymlink(RootDirID, "new-link")
	require.NoError(t, err)
	require.Equal(t, "target.txt", found.Target)
}

func TestRenameSymlinkSameNameRejected(t *testing.T) {
	v := newTestVault(t)
	_, err := v.CreateSymlink(RootDirID, "link", "target.txt")
	require.NoError(t, err)

	err = v.RenameSymlink(RootDirID, "link", "link")
	require.Error(t, err)
}

func TestMoveSymlinkAcrossDirectories(t *testing.T) {
	v := newTestVault(t)

	src, err := v.CreateDirectory(RootDirID, "src")
	require.NoError(t, err)
	dst, err := v.CreateDirectory(RootDirID, "dst")
	require.NoError(t, err)

	_, err = v.CreateSymlink(src.DirID, "link", "target.txt")
	require.NoError(t, err)

	require.NoError(t, v.MoveSymlink(src.DirID, "link", dst.DirID, "link"))

	_, err = v.FindSymlink(src.DirID, "link")
	require.Error(t, err)

	found, err := v.FindSymlink(dst.DirID, "link")
	require.NoError(t, err)
	require.Equal(t, "target.txt", found.Target)
}

func TestAtomicSwapFilesExchangesBodies(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteFile(RootDirID, "a.txt", []byte("content-a")))
	require.NoError(t, v.WriteFile(RootDirID, "b.txt", []byte("content-b")))

	require.NoError(t, v.AtomicSwapFiles(RootDirID, "a.txt", RootDirID, "b.txt"))

	gotA, err := v.ReadFile(RootDirID, "a.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("content-b"), gotA)

	gotB, err := v.ReadFile(RootDirID, "b.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("content-a"), gotB)

	entries, err := os.ReadDir(func() string { d, _ := v.storageDir(RootDirID); return d }())
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".swap_temp_")
	}
}

func TestAtomicSwapDirectoriesSameParent(t *testing.T) {
	v := newTestVault(t)

	a, err := v.CreateDirectory(RootDirID, "a")
	require.NoError(t, err)
	b, err := v.CreateDirectory(RootDirID, "b")
	require.NoError(t, err)

	require.NoError(t, v.AtomicSwapDirectories(RootDirID, "a", "b"))

	foundA, err := v.FindDirectory(RootDirID, "a")
	require.NoError(t, err)
	foundB, err := v.FindDirectory(RootDirID, "b")
	require.NoError(t, err)

	require.Equal(t, b.DirID, foundA.DirID)
	require.Equal(t, a.DirID, foundB.DirID)
}

func TestCreateSymlinkAndDelete(t *testing.T) {
	v := newTestVault(t)

	_, err := v.CreateSymlink(RootDirID, "link", "target.txt")
	require.NoError(t, err)

	info, err := v.FindSymlink(RootDirID, "link")
	require.NoError(t, err)
	require.Equal(t, "target.txt", info.Target)

	require.NoError(t, v.DeleteSymlink(RootDirID, "link"))
	_, err = v.FindSymlink(RootDirID, "link")
	require.Error(t, err)
}

func TestPathWrappers(t *testing.T) {
	v := newTestVault(t)

	_, err := v.CreateDirectoryAll([]string{"a", "b", "c"})
	require.NoError(t, err)

	require.NoError(t, v.WriteByPath("a/b/c/file.txt", []byte("nested content")))

	got, err := v.ReadByPath("a/b/c/file.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("nested content"), got)

	dirID, err := v.ResolveDirID("a/b/c")
	require.NoError(t, err)
	require.NotEmpty(t, dirID)

	info, err := v.FindFileByPath("a/b/c/file.txt")
	require.NoError(t, err)
	require.Equal(t, "file.txt", info.Name)
}

func TestRecoverAndVerifyDirectoryID(t *testing.T) {
	v := newTestVault(t)

	sub, err := v.CreateDirectory(RootDirID, "docs")
	require.NoError(t, err)

	recovered, err := v.RecoverDirectoryID(sub.DirID)
	require.NoError(t, err)
	require.Equal(t, sub.DirID, recovered)

	require.NoError(t, v.VerifyDirectoryID(sub.DirID))
}

func TestRecoverDirectoryTreeFindsAllStorageAreas(t *testing.T) {
	v := newTestVault(t)

	docs, err := v.CreateDirectory(RootDirID, "docs")
	require.NoError(t, err)
	nested, err := v.CreateDirectory(docs.DirID, "nested")
	require.NoError(t, err)

	recovered, err := v.RecoverDirectoryTree()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, r := range recovered {
		found[r.DirID] = true
	}
	require.True(t, found[docs.DirID])
	require.True(t, found[nested.DirID])
}

func TestStatFS(t *testing.T) {
	v := newTestVault(t)

	st, err := v.StatFS()
	require.NoError(t, err)
	require.Greater(t, st.Blocks, uint64(0))
}
