package fuseadapter

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/cryptovaultfs/cryptovaultfs/common"
)

// Mkdir implements the mkdir row: the same EEXIST pre-check as create,
// then create_directory, a fresh inode, and parent cache invalidation.
func (fs *FS) Mkdir(cancel <-chan struct{}, input *fuse.MkdirIn, name string, out *fuse.EntryOut) fuse.Status {
	parent := fs.inodes.Lookup(input.NodeId)
	if parent == nil {
		return fuse.ENOENT
	}

	ctx, stop := fs.metadataCtx()
	existing, err := fs.vault.Lookup(ctx, parent.dirID, name)
	if err != nil {
		stop()
		return toStatus(err)
	}
	if existing.File != nil || existing.Directory != nil || existing.Symlink != nil {
		stop()
		return fuse.Status(syscall.EEXIST)
	}

	info, err := fs.vault.CreateDirectory(ctx, parent.dirID, name)
	stop()
	if err != nil {
		return toStatus(err)
	}

	ino := fs.inodes.GetOrCreate(parent.dirID, name, kindDirectory, info.DirID, 1)
	fs.caches.invalidateDir(input.NodeId)
	fs.fillEntryOut(out, ino, kindDirectory, 0)
	return fuse.OK
}

// OpenDir is a no-op: directory listings are served straight from find/
// list_all per call rather than through a stateful handle.
func (fs *FS) OpenDir(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	return fuse.OK
}

func (fs *FS) ReleaseDir(input *fuse.ReleaseIn) {}

func (fs *FS) FsyncDir(cancel <-chan struct{}, input *fuse.FsyncIn) fuse.Status {
	return fuse.OK
}

// ReadDir emits the cached listing (without incrementing nlookup for any
// entry, per the readdir row), populating the cache from list_all on a
// miss.
func (fs *FS) ReadDir(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	return fs.readDirInto(input, out, false)
}

// ReadDirPlus emits the same listing but increments nlookup for every
// non-`.`/`..` entry, matching FUSE's lookup-count contract for entries
// the kernel will hold a dentry for.
func (fs *FS) ReadDirPlus(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	return fs.readDirInto(input, out, true)
}

func (fs *FS) readDirInto(input *fuse.ReadIn, out *fuse.DirEntryList, plus bool) fuse.Status {
	entry := fs.inodes.Lookup(input.NodeId)
	if entry == nil || entry.kind != kindDirectory {
		return fuse.ENOENT
	}

	if input.Offset == 0 {
		out.AddDirEntry(fuse.DirEntry{Mode: syscall.S_IFDIR, Name: "."})
		out.AddDirEntry(fuse.DirEntry{Mode: syscall.S_IFDIR, Name: ".."})
	}

	listing, ok := fs.caches.dir.Get(input.NodeId)
	if !ok {
		status := fs.submitMeta(common.OpReadDir, func() fuse.Status {
			ctx, stop := fs.metadataCtx()
			result, err := fs.vault.ListAll(ctx, entry.dirID)
			stop()
			if err != nil {
				return toStatus(err)
			}

			var entries []cachedDirEntry
			for _, d := range result.Directories {
				ino := fs.inodes.GetOrCreate(entry.dirID, d.Name, kindDirectory, d.DirID, 0)
				entries = append(entries, cachedDirEntry{name: d.Name, ino: ino, mode: syscall.S_IFDIR})
			}
			for _, f := range result.Files {
				ino := fs.inodes.GetOrCreate(entry.dirID, f.Name, kindFile, "", 0)
				entries = append(entries, cachedDirEntry{name: f.Name, ino: ino, mode: syscall.S_IFREG})
			}
			for _, s := range result.Symlinks {
				ino := fs.inodes.GetOrCreate(entry.dirID, s.Name, kindSymlink, "", 0)
				entries = append(entries, cachedDirEntry{name: s.Name, ino: ino, mode: syscall.S_IFLNK})
			}
			listing = dirListing{names: entries}
			fs.caches.dir.Set(input.NodeId, listing)
			return fuse.OK
		})
		if status != fuse.OK {
			return status
		}
	}

	for _, e := range listing.names {
		de := fuse.DirEntry{Mode: e.mode, Name: e.name, Ino: e.ino}
		if plus {
			if eo := out.AddDirLookupEntry(de); eo != nil {
				fs.inodes.GetOrCreate(entry.dirID, e.name, kindFromMode(e.mode), "", 1)
				fs.fillEntryOut(eo, e.ino, kindFromMode(e.mode), 0)
			}
		} else if !out.AddDirEntry(de) {
			break
		}
	}
	return fuse.OK
}

func kindFromMode(mode uint32) entryKind {
	switch mode {
	case syscall.S_IFDIR:
		return kindDirectory
	case syscall.S_IFLNK:
		return kindSymlink
	default:
		return kindFile
	}
}
