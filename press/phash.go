package press

import (
	"fmt"
	"os"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// PerceptualHash computes the perception hash of the image at path.
func PerceptualHash(path string) (*goimagehash.ImageHash, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return goimagehash.PerceptionHash(img)
}

// SimilarGroup is a cluster of images whose perception hashes fall within
// the distance threshold of the first member.
type SimilarGroup struct {
	Hash  string
	Files []string
	Sizes []int64
}

// FindSimilarImages hashes every path and clusters visually similar ones.
// Unreadable or undecodable images are skipped. Threshold is the maximum
// Hamming distance considered a match.
func FindSimilarImages(paths []string, threshold int) ([]SimilarGroup, error) {
	type entry struct {
		path string
		size int64
		hash *goimagehash.ImageHash
	}

	var entries []entry
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		hash, err := PerceptualHash(p)
		if err != nil {
			continue
		}
		entries = append(entries, entry{path: p, size: fi.Size(), hash: hash})
	}

	assigned := make([]bool, len(entries))
	var groups []SimilarGroup
	for i := range entries {
		if assigned[i] {
			continue
		}
		group := SimilarGroup{
			Hash:  entries[i].hash.ToString(),
			Files: []string{entries[i].path},
			Sizes: []int64{entries[i].size},
		}
		assigned[i] = true
		for j := i + 1; j < len(entries); j++ {
			if assigned[j] {
				continue
			}
			distance, err := entries[i].hash.Distance(entries[j].hash)
			if err != nil {
				continue
			}
			if distance <= threshold {
				group.Files = append(group.Files, entries[j].path)
				group.Sizes = append(group.Sizes, entries[j].size)
				assigned[j] = true
			}
		}
		if len(group.Files) > 1 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}
