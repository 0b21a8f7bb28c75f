package vaultops

import (
	"path"
	"strings"

	"github.com/cryptovaultfs/cryptovaultfs/internal/vaulterrors"
)

// resolveParent walks a cleartext, slash-separated path from the vault
// root and returns the dir_id of its containing directory together with
// the final path component. An empty or "/" path has no containing
// directory and returns KindEmptyPath.
func (v *Vault) resolveParent(cleartextPath string) (string, string, error) {
	clean := strings.Trim(path.Clean("/"+cleartextPath), "/")
	if clean == "" {
		return "", "", vaulterrors.New(vaulterrors.KindEmptyPath, cleartextPath, "")
	}

	components := strings.Split(clean, "/")
	dirID := RootDirID
	for _, comp := range components[:len(components)-1] {
		info, err := v.FindDirectory(dirID, comp)
		if err != nil {
			return "", "", err
		}
		dirID = info.DirID
	}
	return dirID, components[len(components)-1], nil
}

// ReadByPath reads a file addressed by cleartext path from the vault root.
func (v *Vault) ReadByPath(cleartextPath string) ([]byte, error) {
	parentDirID, name, err := v.resolveParent(cleartextPath)
	if err != nil {
		return nil, err
	}
	return v.ReadFile(parentDirID, name)
}

// WriteByPath writes a file addressed by cleartext path from the vault
// root.
func (v *Vault) WriteByPath(cleartextPath string, content []byte) error {
	parentDirID, name, err := v.resolveParent(cleartextPath)
	if err != nil {
		return err
	}
	return v.WriteFile(parentDirID, name, content)
}

// FindFileByPath resolves a cleartext path to a file's info.
func (v *Vault) FindFileByPath(cleartextPath string) (*FileInfo, error) {
	parentDirID, name, err := v.resolveParent(cleartextPath)
	if err != nil {
		return nil, err
	}
	return v.FindFile(parentDirID, name)
}

// FindDirectoryByPath resolves a cleartext path to a directory's info.
func (v *Vault) FindDirectoryByPath(cleartextPath string) (*DirectoryInfo, error) {
	parentDirID, name, err := v.resolveParent(cleartextPath)
	if err != nil {
		return nil, err
	}
	return v.FindDirectory(parentDirID, name)
}

// ResolveDirID walks a cleartext directory path from the vault root and
// returns its dir_id, used by callers (the FUSE adapter's inode table, the
// async frontend) that need a dir_id to hand to the dir_id-addressed
// operations above.
func (v *Vault) ResolveDirID(cleartextPath string) (string, error) {
	clean := strings.Trim(path.Clean("/"+cleartextPath), "/")
	if clean == "" {
		return RootDirID, nil
	}
	dirID := RootDirID
	for _, comp := range strings.Split(clean, "/") {
		info, err := v.FindDirectory(dirID, comp)
		if err != nil {
			return "", err
		}
		dirID = info.DirID
	}
	return dirID, nil
}
