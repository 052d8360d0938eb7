// Package intake accepts user-supplied files, filtered to image media
// types, and watches a drop folder for new arrivals.
package intake

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsImageFile checks if the given file extension is one of the known image
// file extensions.
func IsImageFile(path string) bool {
	var desiredExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp"}

	ext := filepath.Ext(path)
	ext = strings.ToLower(ext) // handle cases where extension is upper case

	for _, v := range desiredExtensions {
		if v == ext {
			return true
		}
	}
	return false
}

// Collect expands the given paths into a flat, ordered list of image
// files: directories are walked recursively, non-image files are dropped.
func Collect(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		files = append(files, p)
	}

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			if IsImageFile(p) {
				add(p)
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if IsImageFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}
