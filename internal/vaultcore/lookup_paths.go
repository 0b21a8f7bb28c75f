package vaultcore

import "path/filepath"

// HashNameFunc is the external, black-box hash used to name a shortened
// entry's shell directory from its (long) encrypted filename.
type HashNameFunc func(encryptedName string) (string, error)

// EntryKind distinguishes what content file a lookup result points at.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
	EntrySymlink
)

// LookupPaths is the result of calculating where a single directory entry
// lives on disk, without touching disk to find out whether it actually does.
type LookupPaths struct {
	// EntryPath is the ".c9r" file/dir, or the ".c9s" shell directory.
	EntryPath string
	// ContentPath is where the entry's payload lives: the same as EntryPath
	// for a regular file, or a path inside the .c9s shell otherwise.
	ContentPath string
	IsShortened bool
}

func contentName(kind EntryKind) string {
	switch kind {
	case EntryDirectory:
		return DirContentName
	case EntrySymlink:
		return SymlinkContentName
	default:
		return FileContentName
	}
}

// CalculateLookupPaths computes the candidate on-disk paths for a single
// (storageDir, encryptedName) pair under the shortening rule. It never
// touches disk; callers stat EntryPath/ContentPath themselves.
func CalculateLookupPaths(storageDir, encryptedName string, threshold int, kind EntryKind, hashFn HashNameFunc) (LookupPaths, error) {
	if len(encryptedName) <= threshold {
		p := filepath.Join(storageDir, encryptedName+RegularSuffix)
		content := p
		if kind != EntryFile {
			content = filepath.Join(p, contentName(kind))
		}
		return LookupPaths{EntryPath: p, ContentPath: content, IsShortened: false}, nil
	}

	h, err := hashFn(encryptedName)
	if err != nil {
		return LookupPaths{}, err
	}

	entry := filepath.Join(storageDir, h+ShortenedSuffix)
	return LookupPaths{
		EntryPath:   entry,
		ContentPath: filepath.Join(entry, contentName(kind)),
		IsShortened: true,
	}, nil
}

// ShortNamePath is where the full encrypted name is stored for a shortened
// entry, regardless of entry kind.
func ShortNamePath(entryPath string) string {
	return filepath.Join(entryPath, ShortNameFile)
}

// DirIDBackupPath is where a directory's own id is backed up, inside its own
// storage directory (see DESIGN.md for the own-id vs. parent-id resolution
// decision for this backup).
func DirIDBackupPath(storageDir string) string {
	return filepath.Join(storageDir, DirIDBackupName)
}
