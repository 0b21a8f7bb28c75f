// Package fuseadapter implements github.com/hanwen/go-fuse/v2/fuse's
// RawFileSystem atop internal/asyncvault, translating kernel lowlevel-ops
// requests into vault operations and vault errors into POSIX errno.
//
// One struct embedding its dependencies, an inode table and a handle map
// (lock ordering across vault resources lives in internal/lockmgr), built on
// github.com/hanwen/go-fuse/v2/fuse's lower-level,
// RENAME_EXCHANGE/fallocate/copy_file_range/lseek-capable RawFileSystem
// rather than a higher-level FUSE binding, since those four operations
// have no hook in a higher-level contract (see DESIGN.md).
package fuseadapter

import (
	"context"
	"sync"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/cryptovaultfs/cryptovaultfs/internal/asyncvault"
	"github.com/cryptovaultfs/cryptovaultfs/internal/handles"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

// Config controls the executor and per-operation timeouts the adapter
// enforces on top of the vault's own operations.
type Config struct {
	Workers          int
	QueueCapacity    int
	Policy           SaturationPolicy
	MetadataTimeout  time.Duration
	DefaultUID       uint32
	DefaultGID       uint32
	DefaultFileMode  uint32
	DefaultDirMode   uint32
}

// DefaultConfig matches the values SPEC_FULL.md's cfg package exposes as
// flag defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         16,
		QueueCapacity:   256,
		Policy:          Block,
		MetadataTimeout: 5 * time.Second,
		DefaultFileMode: 0o600,
		DefaultDirMode:  0o700,
	}
}

// FS is the adapter's RawFileSystem implementation. The zero value is not
// usable; construct with New.
type FS struct {
	fuse.RawFileSystem

	vault    *asyncvault.Vault
	inodes   *InodeTable
	caches   *caches
	handles  *handles.Table
	executor *Executor
	cfg      Config
	server   *fuse.Server

	handleMu    sync.Mutex
	writersByIn map[uint64]handles.ID // inode -> open WriteBuffer handle
	readersByIn map[uint64]handles.ID // inode -> open Reader handle
}

// New wires an already-open async vault into a fresh adapter instance.
func New(vault *asyncvault.Vault, cfg Config) *FS {
	return &FS{
		RawFileSystem: fuse.NewDefaultRawFileSystem(),
		vault:         vault,
		inodes:        NewInodeTable(vaultops.RootDirID),
		caches:        newCaches(),
		handles:       handles.NewTable(),
		executor:      NewExecutor(cfg.Workers, cfg.QueueCapacity, cfg.Policy),
		cfg:           cfg,
		writersByIn:   make(map[uint64]handles.ID),
		readersByIn:   make(map[uint64]handles.ID),
	}
}

// writeBufferForInode returns the WriteBuffer currently open against ino,
// or nil if none is open (e.g. a read-only open, or no open at all).
func (fs *FS) writeBufferForInode(ino uint64) *handles.WriteBuffer {
	fs.handleMu.Lock()
	id, ok := fs.writersByIn[ino]
	fs.handleMu.Unlock()
	if !ok {
		return nil
	}
	return fs.handles.WriteBuffer(id)
}

func (fs *FS) setWriteHandle(ino uint64, id handles.ID) {
	fs.handleMu.Lock()
	fs.writersByIn[ino] = id
	fs.handleMu.Unlock()
}

func (fs *FS) clearWriteHandle(ino uint64) {
	fs.handleMu.Lock()
	delete(fs.writersByIn, ino)
	fs.handleMu.Unlock()
}

func (fs *FS) setReadHandle(ino uint64, id handles.ID) {
	fs.handleMu.Lock()
	fs.readersByIn[ino] = id
	fs.handleMu.Unlock()
}

func (fs *FS) clearReadHandle(ino uint64) {
	fs.handleMu.Lock()
	delete(fs.readersByIn, ino)
	fs.handleMu.Unlock()
}

func (fs *FS) String() string { return "cryptovaultfs" }

func (fs *FS) SetDebug(bool) {}

// Init stashes the server handle for future notify-based cache
// invalidation callbacks; no kernel parameters need negotiating beyond
// what the Server already does for us.
func (fs *FS) Init(server *fuse.Server) { fs.server = server }

// Close stops the background goroutines the adapter owns (executor
// workers, cache sweepers). Not part of RawFileSystem; called by the
// mount command during unmount.
func (fs *FS) Close() {
	fs.executor.Shutdown()
	fs.caches.stop()
}

// metadataCtx derives a context bounded by the adapter's configured
// metadata timeout, so a slow backing store cannot wedge the kernel
// callback thread forever on lookup/getattr/readdir.
func (fs *FS) metadataCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), fs.cfg.MetadataTimeout)
}

// dataCtx is used for flush/release/write, which must never time out:
// timing out a write would risk losing data the caller believes is saved.
func (fs *FS) dataCtx() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// submitMeta runs fn through the bounded executor under a metadata
// timeout, giving the configured saturation policy (reject/block/spill)
// control over backpressure for the read-only, kernel-latency-sensitive
// calls (lookup/getattr/readdir) — the only ones allowed to fail or queue
// under load, unlike writes. op names the FUSE operation (a common.Op*
// constant) for the executor's per-operation counters.
func (fs *FS) submitMeta(op string, fn func() fuse.Status) fuse.Status {
	ctx, stop := fs.metadataCtx()
	defer stop()
	status, err := Submit(ctx, fs.executor, op, func() (fuse.Status, error) {
		return fn(), nil
	})
	if err != nil {
		return toStatus(err)
	}
	return status
}
