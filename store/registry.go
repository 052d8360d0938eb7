// Package store holds the image registry and the user's compression
// settings, both persisted to a local bolt database.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okvalo/pixpress/press"
)

// Status is the lifecycle state of a tracked image.
type Status string

const (
	StatusPending     Status = "pending"
	StatusCompressing Status = "compressing"
	StatusCompressed  Status = "compressed"
	StatusError       Status = "error"
)

// Record tracks one user-supplied image. The committed fields are
// populated together when a compress operation succeeds; CommittedSettings
// is non-nil exactly when Status is StatusCompressed.
type Record struct {
	ID           string
	Name         string
	OriginalSize int64

	// SourcePath is the decodable original on disk. OriginalURL is the
	// renderable reference; it survives restarts even when the source file
	// has since moved.
	SourcePath  string
	OriginalURL string

	Status Status
	Error  string

	Committed         *press.Artifact
	CommittedSize     int64
	CommittedRatio    float64
	CommittedSettings *press.Settings
}

// Engine compresses a source per a settings snapshot.
type Engine interface {
	Compress(src press.Source, s press.Settings) (*press.Artifact, error)
}

// Registry is the ordered collection of tracked images plus the current
// selection. Mutations persist metadata through the attached DB.
type Registry struct {
	mu       sync.Mutex
	records  []*Record
	selected string
	db       *DB
	log      *zap.Logger
}

// NewRegistry creates a registry. db may be nil for an unpersisted
// registry (tests, one-shot commands); log may be nil.
func NewRegistry(db *DB, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{db: db, log: log}
	if db != nil {
		r.records = db.LoadRecords()
		if len(r.records) > 0 {
			r.selected = r.records[0].ID
		}
	}
	return r
}

// AddImages appends one pending record per readable path. When nothing was
// selected before, the first added image becomes the selection.
func (r *Registry) AddImages(paths []string) []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []*Record
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || fi.IsDir() {
			r.log.Warn("skipping unreadable image", zap.String("path", p), zap.Error(err))
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		rec := &Record{
			ID:           uuid.NewString(),
			Name:         filepath.Base(p),
			OriginalSize: fi.Size(),
			SourcePath:   abs,
			OriginalURL:  "file://" + abs,
			Status:       StatusPending,
		}
		r.records = append(r.records, rec)
		added = append(added, rec)
	}

	if r.selected == "" && len(added) > 0 {
		r.selected = added[0].ID
	}
	r.persistLocked()
	return added
}

// Records returns a snapshot of the record list in insertion order.
func (r *Registry) Records() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of tracked images.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Get returns the record with the given id, or nil.
func (r *Registry) Get(id string) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(id)
}

// Selected returns the currently selected record, or nil when the
// registry is empty.
func (r *Registry) Selected() *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(r.selected)
}

// SelectedID returns the id of the current selection ("" when empty).
func (r *Registry) SelectedID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// Select makes id the current selection.
func (r *Registry) Select(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findLocked(id) == nil {
		return fmt.Errorf("unknown image id %q", id)
	}
	r.selected = id
	return nil
}

// Remove deletes a record, releasing its committed artifact. When the
// removed record was selected, selection falls back to the first remaining
// record, or to empty when the registry is now empty.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.records {
		if rec.ID != id {
			continue
		}
		rec.Committed.Release()
		r.records = append(r.records[:i], r.records[i+1:]...)
		break
	}

	if r.selected == id {
		r.selected = ""
		if len(r.records) > 0 {
			r.selected = r.records[0].ID
		}
	}
	r.persistLocked()
}

// Clear removes every record and releases all owned artifacts.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		rec.Committed.Release()
	}
	r.records = nil
	r.selected = ""
	r.persistLocked()
}

// Compress runs the engine against the given settings snapshot and, on
// success, stamps the record with the committed artifact and a structural
// copy of the exact settings used. The copy, not the caller's value, is
// what later settings comparisons run against.
func (r *Registry) Compress(id string, eng Engine, s press.Settings) error {
	r.mu.Lock()
	rec := r.findLocked(id)
	if rec == nil {
		r.mu.Unlock()
		return fmt.Errorf("unknown image id %q", id)
	}
	if rec.Status == StatusCompressing {
		r.mu.Unlock()
		return fmt.Errorf("%s is already being compressed", rec.Name)
	}
	prev := rec.Status
	rec.Status = StatusCompressing
	rec.Error = ""
	src := resolveSource(rec)
	r.mu.Unlock()

	if src == nil {
		r.fail(id, prev, press.ErrNoSource)
		return fmt.Errorf("%s: %w", rec.Name, press.ErrNoSource)
	}

	art, err := eng.Compress(src, s)
	if err != nil {
		r.fail(id, prev, err)
		return err
	}

	snapshot := s
	r.finishCommitted(id, art, press.Ratio(rec.OriginalSize, art.Size), &snapshot)
	return nil
}

// CompressAll sequentially compresses every record that has no committed
// artifact yet, reporting how many succeeded and how many failed.
func (r *Registry) CompressAll(eng Engine, s press.Settings) (done, failed int) {
	for _, rec := range r.Records() {
		if rec.Status == StatusCompressed || rec.Status == StatusCompressing {
			continue
		}
		if err := r.Compress(rec.ID, eng, s); err != nil {
			failed++
			continue
		}
		done++
	}
	return done, failed
}

// fail surfaces the error and restores the record's prior status. A
// failed re-compress must not discard a still-valid committed artifact,
// so a previously compressed record stays compressed.
func (r *Registry) fail(id string, prev Status, opErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.findLocked(id)
	if rec == nil {
		return
	}
	if prev == StatusCompressed && rec.Committed != nil {
		rec.Status = StatusCompressed
	} else {
		rec.Status = StatusError
	}
	rec.Error = opErr.Error()
	r.persistLocked()
}

func (r *Registry) finishCommitted(id string, art *press.Artifact, ratio float64, snapshot *press.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.findLocked(id)
	if rec == nil {
		art.Release()
		return
	}
	rec.Committed.Release()
	rec.Committed = art
	rec.CommittedSize = art.Size
	rec.CommittedRatio = ratio
	rec.CommittedSettings = snapshot
	rec.Status = StatusCompressed
	rec.Error = ""
	r.persistLocked()
}

func (r *Registry) findLocked(id string) *Record {
	if id == "" {
		return nil
	}
	for _, rec := range r.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

func (r *Registry) persistLocked() {
	if r.db == nil {
		return
	}
	if err := r.db.SaveRecords(r.records); err != nil {
		r.log.Warn("persisting image registry failed", zap.Error(err))
	}
}

// resolveSource picks the decodable input for a record: the source file
// when it still exists, else the path behind the renderable URL. Returns
// nil when neither resolves.
func resolveSource(rec *Record) press.Source {
	if rec.SourcePath != "" {
		if _, err := os.Stat(rec.SourcePath); err == nil {
			return press.FileSource{Path: rec.SourcePath}
		}
	}
	if p := strings.TrimPrefix(rec.OriginalURL, "file://"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return press.FileSource{Path: p}
		}
	}
	return nil
}

// ResolveSource exposes source resolution for the preview pipeline, which
// shares this single code path instead of branching per source kind.
func ResolveSource(rec *Record) press.Source {
	return resolveSource(rec)
}
