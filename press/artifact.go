package press

import (
	"os"
	"sync"
)

// Artifact is one encoded output blob, backed by a file in the engine's
// cache directory. Whoever receives an Artifact owns it and must call
// Release when the artifact is superseded or its owner is torn down, so a
// long session does not accumulate cache files without bound.
type Artifact struct {
	Path   string
	Size   int64
	Width  int
	Height int

	mu       sync.Mutex
	released bool
}

// URL returns a renderable reference to the artifact.
func (a *Artifact) URL() string {
	if a == nil {
		return ""
	}
	return "file://" + a.Path
}

// Release removes the backing file. Releasing twice, or releasing a nil
// artifact, is a no-op: a later artifact always has its own backing file,
// so a stale double-release can never free a newer artifact's bytes.
func (a *Artifact) Release() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	a.released = true
	_ = os.Remove(a.Path)
}

// Released reports whether Release has been called.
func (a *Artifact) Released() bool {
	if a == nil {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}
