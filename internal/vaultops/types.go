package vaultops

// FileInfo describes a file entry as returned by list/find.
type FileInfo struct {
	Name          string // cleartext
	EncryptedName string
	EncryptedPath string // absolute path to the .c9r file or .c9s shell
	ContentPath   string // where the body bytes live
	EncryptedSize int64
	IsShortened   bool
}

// DirectoryInfo describes a directory entry as returned by list/find.
type DirectoryInfo struct {
	Name          string // cleartext
	DirID         string // child directory's own id
	EncryptedPath string
	ParentDirID   string
}

// SymlinkInfo describes a symlink entry as returned by list/find.
type SymlinkInfo struct {
	Name          string // cleartext
	Target        string // decrypted target
	EncryptedPath string
	IsShortened   bool
}
