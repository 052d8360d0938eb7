package utils

import (
	"path/filepath"
	"strings"
)

// IsNetworkPath detects whether a source image lives on a network-mounted
// drive. Reading originals over the network makes preview regeneration
// noticeably slower, so callers warn when this returns true.
func IsNetworkPath(path string) bool {
	// Windows UNC paths, before Abs rewrites the prefix
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "\\\\") {
		return true
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	networkPrefixes := []string{
		"/mnt/",     // Linux NFS/SMB mounts
		"/media/",   // Linux removable/network media
		"/Volumes/", // macOS network volumes
	}
	for _, prefix := range networkPrefixes {
		if strings.HasPrefix(absPath, prefix) {
			return true
		}
	}

	lowerPath := strings.ToLower(absPath)
	for _, indicator := range []string{"nfs", "cifs", "smb", "webdav", "sftp"} {
		if strings.Contains(lowerPath, indicator) {
			return true
		}
	}

	return false
}
