package vaultcore

import "strings"

const (
	RegularSuffix   = ".c9r"
	ShortenedSuffix = ".c9s"

	// Names of content files inside a regular or shortened directory entry.
	DirContentName     = "dir.c9r"
	SymlinkContentName = "symlink.c9r"
	FileContentName    = "contents.c9r"
	ShortNameFile      = "name.c9s"
	DirIDBackupName    = "dirid.c9r"
)

// IsRegularEntry reports whether name is a non-shortened vault entry.
func IsRegularEntry(name string) bool {
	return strings.HasSuffix(name, RegularSuffix)
}

// IsShortenedEntry reports whether name is a shortened-entry shell directory.
func IsShortenedEntry(name string) bool {
	return strings.HasSuffix(name, ShortenedSuffix)
}
