package vaultops

import (
	"golang.org/x/sys/unix"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// StatFS reports on the backing filesystem underneath the vault root. The
// numbers describe the ciphertext store directly: free space and inode
// counts are not adjusted for the chunked AEAD format's per-file overhead,
// since that overhead depends on content and isn't knowable in advance.
type StatFS struct {
	BlockSize       uint32
	Blocks          uint64
	BlocksFree      uint64
	BlocksAvailable uint64
	Files           uint64
	FilesFree       uint64
	NameLen         uint32
}

func (v *Vault) StatFS() (StatFS, error) {
	var raw unix.Statfs_t
	if err := unix.Statfs(v.path, &raw); err != nil {
		return StatFS{}, vaulterrors.Wrap(vaulterrors.KindIO, err, "", RootDirID)
	}
	return StatFS{
		BlockSize:       uint32(raw.Bsize),
		Blocks:          raw.Blocks,
		BlocksFree:      raw.Bfree,
		BlocksAvailable: raw.Bavail,
		Files:           raw.Files,
		FilesFree:       raw.Ffree,
		NameLen:         uint32(raw.Namelen),
	}, nil
}
