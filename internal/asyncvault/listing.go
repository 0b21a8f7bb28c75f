package asyncvault

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

// ListAll serves a directory listing (files+dirs+symlinks in one call).
// The sync side already does a single directory scan (see
// vaultops.ListAll) and fans its own per-entry name/target decryption out
// across up to 32 goroutines, so this layer only needs to dispatch the
// whole call and honor ctx cancellation — wrapping it in a second,
// package-level limit here would re-serialize across listings the very
// concurrency vaultops just bounded within one.
func (v *Vault) ListAll(ctx context.Context, dirID string) (vaultops.ListingResult, error) {
	return runDispatched(ctx, func() (vaultops.ListingResult, error) {
		return v.sync.ListAll(dirID)
	})
}

// LookupResult is the outcome of the three-way parallel lookup described
// for the `lookup` FUSE callback.
type LookupResult struct {
	File      *vaultops.FileInfo
	Directory *vaultops.DirectoryInfo
	Symlink   *vaultops.SymlinkInfo
}

// Lookup runs find_file, find_directory, and find_symlink concurrently and
// returns whichever one(s) matched. A name can only be one kind at a time
// in a well-formed vault, so in practice at most one of the three fields
// is non-nil. Any error from one of the three finds, not-found or
// otherwise, just leaves that field nil (a name of one kind makes the other
// kinds' finds fail, e.g. find_directory on a file entry reports an I/O
// error), so the returned error is always nil.
func (v *Vault) Lookup(ctx context.Context, parentDirID, name string) (LookupResult, error) {
	var out LookupResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := v.FindFile(gctx, parentDirID, name)
		if err == nil {
			out.File = info
		}
		return nil
	})
	g.Go(func() error {
		info, err := v.FindDirectory(gctx, parentDirID, name)
		if err == nil {
			out.Directory = info
		}
		return nil
	})
	g.Go(func() error {
		info, err := v.FindSymlink(gctx, parentDirID, name)
		if err == nil {
			out.Symlink = info
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return LookupResult{}, err
	}
	return out, nil
}
