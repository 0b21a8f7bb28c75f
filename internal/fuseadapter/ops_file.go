package fuseadapter

import (
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/cryptovaultfs/cryptovaultfs/common"
	"github.com/cryptovaultfs/cryptovaultfs/internal/cryptoprim"
	"github.com/cryptovaultfs/cryptovaultfs/internal/handles"
)

// Open implements the open row: read-only opens get a streaming Reader
// over the entry's ciphertext body — directory/file locks are released
// once the underlying os.File is open, since the open file descriptor
// keeps the content accessible even across a concurrent unlink/rename —
// any write-capable mode gets a WriteBuffer seeded with the existing
// content (empty if O_TRUNC is set).
func (fs *FS) Open(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	entry := fs.inodes.Lookup(input.NodeId)
	if entry == nil || entry.kind != kindFile {
		return fuse.ENOENT
	}

	writable := input.Flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0
	ctx, stop := fs.dataCtx()
	defer stop()

	if !writable {
		info, err := fs.vault.FindFile(ctx, entry.parent, entry.name)
		if err != nil {
			return toStatus(err)
		}
		file, osErr := os.Open(info.ContentPath)
		if osErr != nil {
			return fuse.EIO
		}
		plaintextSize := cryptoprim.PlaintextSize(info.EncryptedSize)
		id := fs.handles.PutReader(handles.NewReader(file, fs.vault.Sync().Key(), plaintextSize, nil))
		fs.setReadHandle(input.NodeId, id)
		out.Fh = uint64(id)
		return fuse.OK
	}

	var initial []byte
	if input.Flags&syscall.O_TRUNC == 0 {
		content, err := fs.vault.ReadFile(ctx, entry.parent, entry.name)
		if err != nil && toStatus(err) != fuse.ENOENT {
			return toStatus(err)
		}
		initial = content
	}

	id := fs.handles.PutWriteBuffer(handles.NewWriteBuffer(initial))
	fs.setWriteHandle(input.NodeId, id)
	out.Fh = uint64(id)
	return fuse.OK
}

// Create implements the create row: pre-check via Lookup for an existing
// entry of any kind (EEXIST on hit), then allocate a dirty WriteBuffer and
// a fresh inode, invalidating the parent's directory cache.
func (fs *FS) Create(cancel <-chan struct{}, input *fuse.CreateIn, name string, out *fuse.CreateOut) fuse.Status {
	parent := fs.inodes.Lookup(input.NodeId)
	if parent == nil {
		return fuse.ENOENT
	}

	ctx, stop := fs.metadataCtx()
	existing, err := fs.vault.Lookup(ctx, parent.dirID, name)
	stop()
	if err != nil {
		return toStatus(err)
	}
	if existing.File != nil || existing.Directory != nil || existing.Symlink != nil {
		return fuse.Status(syscall.EEXIST)
	}

	wb := handles.NewWriteBuffer(nil)
	_, _ = wb.WriteAt(nil, 0) // zero-length write still sets dirty, so release/flush persists the new empty file
	id := fs.handles.PutWriteBuffer(wb)

	ino := fs.inodes.GetOrCreate(parent.dirID, name, kindFile, "", 1)
	fs.setWriteHandle(ino, id)
	fs.caches.invalidateDir(input.NodeId)

	fs.fillEntryOut(&out.Entry, ino, kindFile, 0)
	out.Open.Fh = uint64(id)
	return fuse.OK
}

// Read dispatches to whichever handle kind fh names.
func (fs *FS) Read(cancel <-chan struct{}, input *fuse.ReadIn, buf []byte) (fuse.ReadResult, fuse.Status) {
	id := handles.ID(input.Fh)
	if wb := fs.handles.WriteBuffer(id); wb != nil {
		n, err := wb.ReadAt(buf, int64(input.Offset))
		if err != nil {
			return nil, toStatus(err)
		}
		return fuse.ReadResultData(buf[:n]), fuse.OK
	}
	if r := fs.handles.Reader(id); r != nil {
		n, err := r.ReadAt(buf, int64(input.Offset))
		if err != nil {
			return nil, toStatus(err)
		}
		return fuse.ReadResultData(buf[:n]), fuse.OK
	}
	return nil, fuse.Status(syscall.EBADF)
}

// Write implements the write row: write into the WriteBuffer, extending
// as needed, mark dirty, and invalidate the inode's attribute cache so
// the next getattr recomputes size.
func (fs *FS) Write(cancel <-chan struct{}, input *fuse.WriteIn, data []byte) (uint32, fuse.Status) {
	wb := fs.handles.WriteBuffer(handles.ID(input.Fh))
	if wb == nil {
		return 0, fuse.Status(syscall.EBADF)
	}
	n, err := wb.WriteAt(data, int64(input.Offset))
	if err != nil {
		return 0, toStatus(err)
	}
	fs.caches.invalidateAttr(input.NodeId)
	return uint32(n), fuse.OK
}

// flushDirtyBuffer implements the flush/fsync/release data-consistency
// sequence: move the bytes out, block on write_file (bypassing the
// executor's timeout entirely since a write must never be abandoned
// mid-flight), and restore them into the buffer as clean so a subsequent
// read still sees what was written.
func (fs *FS) flushDirtyBuffer(parentDirID, name string, wb *handles.WriteBuffer) fuse.Status {
	if !wb.Dirty() {
		return fuse.OK
	}
	content := wb.Bytes()

	ctx, stop := fs.dataCtx()
	defer stop()
	_, err := RunDirect(fs.executor, common.OpWriteFile, func() (struct{}, error) {
		return struct{}{}, fs.vault.WriteFile(ctx, parentDirID, name, content)
	})
	if err != nil {
		return toStatus(err)
	}
	wb.MarkClean()
	return fuse.OK
}

func (fs *FS) Flush(cancel <-chan struct{}, input *fuse.FlushIn) fuse.Status {
	entry := fs.inodes.Lookup(input.NodeId)
	wb := fs.handles.WriteBuffer(handles.ID(input.Fh))
	if entry == nil || wb == nil {
		return fuse.OK
	}
	return fs.flushDirtyBuffer(entry.parent, entry.name, wb)
}

func (fs *FS) Fsync(cancel <-chan struct{}, input *fuse.FsyncIn) fuse.Status {
	entry := fs.inodes.Lookup(input.NodeId)
	wb := fs.handles.WriteBuffer(handles.ID(input.Fh))
	if entry == nil || wb == nil {
		return fuse.OK
	}
	return fs.flushDirtyBuffer(entry.parent, entry.name, wb)
}

// Release removes the handle, flushing first if it is a dirty write
// buffer, and invalidates the attribute cache either way.
func (fs *FS) Release(cancel <-chan struct{}, input *fuse.ReleaseIn) {
	id := handles.ID(input.Fh)
	entry := fs.inodes.Lookup(input.NodeId)

	if wb := fs.handles.CloseWriteBuffer(id); wb != nil {
		fs.clearWriteHandle(input.NodeId)
		fs.clearReadHandle(input.NodeId)
		if entry != nil {
			_ = fs.flushDirtyBuffer(entry.parent, entry.name, wb)
		}
	}
	if r := fs.handles.CloseReader(id); r != nil {
		_ = r.Close()
	}
	fs.caches.invalidateAttr(input.NodeId)
}
