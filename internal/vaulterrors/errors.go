// Package vaulterrors implements the vault's error taxonomy. Every
// error vault operations return is one of the kinds below, carrying whatever
// context was available at the point of failure. The FUSE adapter translates
// each kind to a POSIX errno at the kernel boundary; nothing else should
// need to type-switch on these.
package vaulterrors

import (
	"errors"
	"fmt"
)

// Kind identifies which branch of the taxonomy an error belongs to.
type Kind int

const (
	KindIO Kind = iota
	KindCryptoDecrypt
	KindCryptoFilename
	KindNotFoundFile
	KindNotFoundDir
	KindNotFoundSymlink
	KindAlreadyExistsFile
	KindAlreadyExistsDir
	KindAlreadyExistsSymlink
	KindNotEmpty
	KindSameSourceAndDestination
	KindInvalidVaultStructure
	KindEmptyPath
	KindNotADirectory
	KindNotAFile
	KindNotASymlink
	KindAtomicWriteFailed
	KindKeyAccess
	KindStreaming
	KindExecutor
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindCryptoDecrypt:
		return "crypto-decrypt"
	case KindCryptoFilename:
		return "crypto-filename"
	case KindNotFoundFile:
		return "not-found-file"
	case KindNotFoundDir:
		return "not-found-dir"
	case KindNotFoundSymlink:
		return "not-found-symlink"
	case KindAlreadyExistsFile:
		return "already-exists-file"
	case KindAlreadyExistsDir:
		return "already-exists-dir"
	case KindAlreadyExistsSymlink:
		return "already-exists-symlink"
	case KindNotEmpty:
		return "not-empty"
	case KindSameSourceAndDestination:
		return "same-source-and-destination"
	case KindInvalidVaultStructure:
		return "invalid-vault-structure"
	case KindEmptyPath:
		return "empty-path"
	case KindNotADirectory:
		return "not-a-directory"
	case KindNotAFile:
		return "not-a-file"
	case KindNotASymlink:
		return "not-a-symlink"
	case KindAtomicWriteFailed:
		return "atomic-write-failed"
	case KindKeyAccess:
		return "key-access"
	case KindStreaming:
		return "streaming"
	case KindExecutor:
		return "executor"
	default:
		return "unknown"
	}
}

// Error is the concrete type every vault-facing error is built from. Context
// fields are optional; only the ones known at the call site are set.
type Error struct {
	Kind          Kind
	DirID         string
	Name          string
	EncryptedPath string
	VaultPath     string
	Err           error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" name=%q", e.Name)
	}
	if e.DirID != "" {
		msg += fmt.Sprintf(" dir_id=%q", e.DirID)
	}
	if e.EncryptedPath != "" {
		msg += fmt.Sprintf(" path=%q", e.EncryptedPath)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, vaulterrors.NotFoundFile) style sentinel comparisons
// work by kind rather than by identity.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func New(kind Kind, name, dirID string) *Error {
	return &Error{Kind: kind, Name: name, DirID: dirID}
}

func Wrap(kind Kind, err error, name, dirID string) *Error {
	return &Error{Kind: kind, Name: name, DirID: dirID, Err: err}
}

func WithPath(e *Error, encryptedPath string) *Error {
	e.EncryptedPath = encryptedPath
	return e
}

func WithVaultPath(e *Error, vaultPath string) *Error {
	e.VaultPath = vaultPath
	return e
}

// KindOf extracts the Kind from err, defaulting to KindIO for errors that
// did not originate in this package (e.g. raw *os.PathError bubbling up).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}

// Sentinels for errors.Is comparisons against a bare kind, with no context.
var (
	ErrNotFoundFile             = &Error{Kind: KindNotFoundFile}
	ErrNotFoundDir              = &Error{Kind: KindNotFoundDir}
	ErrNotFoundSymlink          = &Error{Kind: KindNotFoundSymlink}
	ErrAlreadyExistsFile        = &Error{Kind: KindAlreadyExistsFile}
	ErrAlreadyExistsDir         = &Error{Kind: KindAlreadyExistsDir}
	ErrAlreadyExistsSymlink     = &Error{Kind: KindAlreadyExistsSymlink}
	ErrNotEmpty                 = &Error{Kind: KindNotEmpty}
	ErrSameSourceAndDestination = &Error{Kind: KindSameSourceAndDestination}
	ErrInvalidVaultStructure    = &Error{Kind: KindInvalidVaultStructure}
	ErrEmptyPath                = &Error{Kind: KindEmptyPath}
	ErrNotADirectory            = &Error{Kind: KindNotADirectory}
	ErrNotAFile                 = &Error{Kind: KindNotAFile}
	ErrNotASymlink              = &Error{Kind: KindNotASymlink}
)
