package fuseadapter

import (
	"context"
	"errors"

	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// toStatus translates an internal error into the errno fuse.Status the
// kernel expects, by vaulterrors.Kind. A nil err maps to fuse.OK.
func toStatus(err error) fuse.Status {
	if err == nil {
		return fuse.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fuse.Status(unix.ETIMEDOUT)
	}
	if errors.Is(err, context.Canceled) {
		return fuse.EINTR
	}

	switch vaulterrors.KindOf(err) {
	case vaulterrors.KindNotFoundFile, vaulterrors.KindNotFoundDir, vaulterrors.KindNotFoundSymlink:
		return fuse.ENOENT
	case vaulterrors.KindAlreadyExistsFile, vaulterrors.KindAlreadyExistsDir, vaulterrors.KindAlreadyExistsSymlink:
		return fuse.Status(unix.EEXIST)
	case vaulterrors.KindNotEmpty:
		return fuse.Status(unix.ENOTEMPTY)
	case vaulterrors.KindNotADirectory:
		return fuse.ENOTDIR
	case vaulterrors.KindNotAFile, vaulterrors.KindNotASymlink:
		return fuse.Status(unix.EISDIR)
	case vaulterrors.KindSameSourceAndDestination, vaulterrors.KindEmptyPath:
		return fuse.EINVAL
	case vaulterrors.KindInvalidVaultStructure:
		return fuse.Status(unix.EXDEV)
	case vaulterrors.KindExecutor:
		return fuse.Status(unix.ETIMEDOUT)
	default:
		return fuse.EIO
	}
}

// statusENOTSUP is returned for chmod/chown (SetAttr mode/uid/gid bits),
// fallocate modes other than 0, and RENAME_EXCHANGE between mismatched
// kinds. xattr and lock requests are not handled here; they fall through
// to the embedded default RawFileSystem.
const statusENOTSUP = fuse.Status(unix.ENOTSUP)
