package asyncvault

import (
	"context"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

// ReadFile takes the read-fast-path when dirID's read lock is uncontended,
// otherwise dispatches and waits, honoring ctx cancellation either way.
func (v *Vault) ReadFile(ctx context.Context, parentDirID, name string) ([]byte, error) {
	return runRead(ctx, v, v.sync.Locks(), parentDirID, "file", func() ([]byte, error) {
		return v.sync.ReadFile(parentDirID, name)
	})
}

// WriteFile has no fast path: every write takes the directory write lock,
// which is always exclusive, so there is nothing useful a non-blocking
// reader-side probe could report.
func (v *Vault) WriteFile(ctx context.Context, parentDirID, name string, content []byte) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.WriteFile(parentDirID, name, content)
	})
	return err
}

func (v *Vault) FindFile(ctx context.Context, parentDirID, name string) (*vaultops.FileInfo, error) {
	return runRead(ctx, v, v.sync.Locks(), parentDirID, "file", func() (*vaultops.FileInfo, error) {
		return v.sync.FindFile(parentDirID, name)
	})
}

func (v *Vault) FindDirectory(ctx context.Context, parentDirID, name string) (*vaultops.DirectoryInfo, error) {
	return runRead(ctx, v, v.sync.Locks(), parentDirID, "directory", func() (*vaultops.DirectoryInfo, error) {
		return v.sync.FindDirectory(parentDirID, name)
	})
}

func (v *Vault) FindSymlink(ctx context.Context, parentDirID, name string) (*vaultops.SymlinkInfo, error) {
	return runRead(ctx, v, v.sync.Locks(), parentDirID, "symlink", func() (*vaultops.SymlinkInfo, error) {
		return v.sync.FindSymlink(parentDirID, name)
	})
}

func (v *Vault) CreateDirectory(ctx context.Context, parentDirID, name string) (*vaultops.DirectoryInfo, error) {
	return runDispatched(ctx, func() (*vaultops.DirectoryInfo, error) {
		return v.sync.CreateDirectory(parentDirID, name)
	})
}

func (v *Vault) DeleteFile(ctx context.Context, parentDirID, name string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.DeleteFile(parentDirID, name)
	})
	return err
}

func (v *Vault) DeleteSymlink(ctx context.Context, parentDirID, name string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.DeleteSymlink(parentDirID, name)
	})
	return err
}

func (v *Vault) DeleteDirectory(ctx context.Context, parentDirID, name string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.DeleteDirectory(parentDirID, name)
	})
	return err
}

func (v *Vault) DeleteRecursive(ctx context.Context, parentDirID, name string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.DeleteRecursive(parentDirID, name)
	})
	return err
}

func (v *Vault) RenameFile(ctx context.Context, dirID, oldName, newName string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.RenameFile(dirID, oldName, newName)
	})
	return err
}

func (v *Vault) MoveFile(ctx context.Context, srcDirID, srcName, dstDirID, dstName string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.MoveFile(srcDirID, srcName, dstDirID, dstName)
	})
	return err
}

func (v *Vault) AtomicSwapFiles(ctx context.Context, dirA, nameA, dirB, nameB string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.AtomicSwapFiles(dirA, nameA, dirB, nameB)
	})
	return err
}

func (v *Vault) AtomicSwapDirectories(ctx context.Context, parentDirID, nameA, nameB string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.AtomicSwapDirectories(parentDirID, nameA, nameB)
	})
	return err
}

func (v *Vault) MoveDirectory(ctx context.Context, srcParentDirID, srcName, dstParentDirID, dstName string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.MoveDirectory(srcParentDirID, srcName, dstParentDirID, dstName)
	})
	return err
}

func (v *Vault) RenameDirectory(ctx context.Context, parentDirID, oldName, newName string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.RenameDirectory(parentDirID, oldName, newName)
	})
	return err
}

func (v *Vault) RenameSymlink(ctx context.Context, dirID, oldName, newName string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.RenameSymlink(dirID, oldName, newName)
	})
	return err
}

func (v *Vault) MoveSymlink(ctx context.Context, srcDirID, srcName, dstDirID, dstName string) error {
	_, err := runDispatched(ctx, func() (struct{}, error) {
		return struct{}{}, v.sync.MoveSymlink(srcDirID, srcName, dstDirID, dstName)
	})
	return err
}

func (v *Vault) CreateSymlink(ctx context.Context, parentDirID, name, target string) (*vaultops.SymlinkInfo, error) {
	return runDispatched(ctx, func() (*vaultops.SymlinkInfo, error) {
		return v.sync.CreateSymlink(parentDirID, name, target)
	})
}

// StatFS touches no per-directory lock, so it bypasses the dispatcher and
// goes straight to the underlying syscall.
func (v *Vault) StatFS(ctx context.Context) (vaultops.StatFS, error) {
	return v.sync.StatFS()
}
