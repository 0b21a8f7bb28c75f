package fuseadapter

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/cryptovaultfs/cryptovaultfs/internal/handles"
)

// StatFs reports on the backing filesystem underneath the vault root.
func (fs *FS) StatFs(cancel <-chan struct{}, input *fuse.InHeader, out *fuse.StatfsOut) fuse.Status {
	ctx, stop := fs.metadataCtx()
	defer stop()

	st, err := fs.vault.StatFS(ctx)
	if err != nil {
		return toStatus(err)
	}
	out.St = fuse.Kstatfs{
		Blocks:  st.Blocks,
		Bfree:   st.BlocksFree,
		Bavail:  st.BlocksAvailable,
		Files:   st.Files,
		Ffree:   st.FilesFree,
		Bsize:   st.BlockSize,
		NameLen: st.NameLen,
		Frsize:  st.BlockSize,
	}
	return fuse.OK
}

// Fallocate only supports mode 0 (plain preallocation/extension), which a
// WriteBuffer already does implicitly on any write past its current end; a
// bare fallocate with no following write just needs the buffer to grow.
// Hole-punching and other modes are not supported.
func (fs *FS) Fallocate(cancel <-chan struct{}, input *fuse.FallocateIn) fuse.Status {
	if input.Mode != 0 {
		return statusENOTSUP
	}
	wb := fs.handles.WriteBuffer(handles.ID(input.Fh))
	if wb == nil {
		return fuse.Status(syscall.EBADF)
	}
	end := int64(input.Offset + input.Length)
	if end <= wb.Size() {
		return fuse.OK
	}
	if err := wb.Truncate(end); err != nil {
		return toStatus(err)
	}
	return fuse.OK
}

// CopyFileRange copies plaintext between two open handles entirely in
// memory: read the source range (buffer or streaming reader, whichever
// the source handle is), then write it into the destination buffer.
func (fs *FS) CopyFileRange(cancel <-chan struct{}, input *fuse.CopyFileRangeIn) (uint32, fuse.Status) {
	dst := fs.handles.WriteBuffer(handles.ID(input.FhOut))
	if dst == nil {
		return 0, fuse.Status(syscall.EBADF)
	}

	buf := make([]byte, input.Len)
	var n int
	var err error
	if srcBuf := fs.handles.WriteBuffer(handles.ID(input.FhIn)); srcBuf != nil {
		n, err = srcBuf.ReadAt(buf, int64(input.OffIn))
	} else if r := fs.handles.Reader(handles.ID(input.FhIn)); r != nil {
		n, err = r.ReadAt(buf, int64(input.OffIn))
	} else {
		return 0, fuse.Status(syscall.EBADF)
	}
	if err != nil {
		return 0, toStatus(err)
	}

	written, err := dst.WriteAt(buf[:n], int64(input.OffOut))
	if err != nil {
		return 0, toStatus(err)
	}
	return uint32(written), fuse.OK
}

// Linux's lseek(2) whence values, reproduced here for the same reason as
// the rename flags in ops_rename.go.
const (
	seekSet  = 0
	seekCur  = 1
	seekEnd  = 2
	seekData = 3
	seekHole = 4
)

// Lseek implements SEEK_SET/CUR/END against the handle's known size, and
// treats the whole file as one contiguous data region: SEEK_DATA returns
// the requested offset unchanged, SEEK_HOLE reports EOF, since sparse
// regions are not tracked by either handle type.
func (fs *FS) Lseek(cancel <-chan struct{}, input *fuse.LseekIn, out *fuse.LseekOut) fuse.Status {
	var size int64
	if wb := fs.handles.WriteBuffer(handles.ID(input.Fh)); wb != nil {
		size = wb.Size()
	} else if r := fs.handles.Reader(handles.ID(input.Fh)); r != nil {
		size = r.Size()
	} else {
		return fuse.Status(syscall.EBADF)
	}

	switch input.Whence {
	case seekSet, seekCur:
		out.Offset = input.Offset
	case seekData:
		if int64(input.Offset) >= size {
			return fuse.Status(syscall.ENXIO)
		}
		out.Offset = input.Offset
	case seekEnd, seekHole:
		out.Offset = uint64(size)
	default:
		return fuse.EINVAL
	}
	return fuse.OK
}
