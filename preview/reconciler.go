package preview

import (
	"errors"
	"fmt"
	"sync"

	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
)

// Engine is the pixel transform the reconciler delegates to.
type Engine interface {
	Compress(src press.Source, s press.Settings) (*press.Artifact, error)
}

// Reconciler tracks live-preview regeneration with an explicit generation
// counter. Every trigger (settings change, selection change) bumps the
// generation; the driver debounces, then calls Begin with the generation
// it captured, runs Generate, and hands the outcome to Publish. A
// completion whose generation is no longer current is discarded, so a
// stale render can never overwrite state computed for newer inputs.
//
// There is no hard cancellation: at most one regeneration executes at a
// time, a trigger arriving mid-flight is dropped rather than queued, and
// supersession is handled entirely at publish time.
type Reconciler struct {
	mu      sync.Mutex
	gen     uint64
	imageID string
	running bool
	live    Live
}

// NewReconciler returns an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Invalidate marks the live preview stale after a settings change and
// returns the generation a future regeneration must carry. The previous
// live artifact stays visible until its replacement publishes.
func (r *Reconciler) Invalidate() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.live.Generating = true
	r.live.Err = ""
	return r.gen
}

// SelectImage switches the reconciler to a different image, dropping the
// old image's live preview outright: its pixels must never show up while
// another image is selected. Returns the new current generation.
func (r *Reconciler) SelectImage(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.imageID {
		r.imageID = id
		r.live.Artifact.Release()
		r.live = Live{Generating: true}
	} else {
		r.live.Generating = true
		r.live.Err = ""
	}
	r.gen++
	return r.gen
}

// Begin reports whether a regeneration for gen should run. Stale
// generations are refused, as is any trigger while a regeneration is
// already executing; the next settings change re-triggers if needed.
func (r *Reconciler) Begin(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.running {
		return false
	}
	r.running = true
	return true
}

// Publish installs a completed regeneration, releasing the artifact it
// supersedes. A completion for a stale generation releases its own
// artifact and reports false; the live state it would have overwritten is
// left for the current generation's run. Failures clear the live preview
// rather than presenting output computed for other settings.
func (r *Reconciler) Publish(gen uint64, art *press.Artifact, ratio float64, genErr error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false

	if gen != r.gen {
		art.Release()
		return false
	}

	if genErr != nil {
		r.live.Artifact.Release()
		r.live = Live{Err: humanError(genErr)}
		return true
	}

	prev := r.live.Artifact
	r.live = Live{Artifact: art, Size: art.Size, Ratio: ratio}
	if prev != art {
		prev.Release()
	}
	return true
}

// Live returns the current live-preview state.
func (r *Reconciler) Live() Live {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Generation returns the current generation counter.
func (r *Reconciler) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Reset drops all live state, releasing any held artifact. Used on
// teardown and when the registry empties.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live.Artifact.Release()
	r.live = Live{}
	r.imageID = ""
	r.gen++
}

// Generate produces a live preview for rec under the given settings: it
// resolves a decodable source, runs the engine, and computes the
// compression ratio. One pipeline serves both file-backed and URL-backed
// records; the source kind is resolved up front, not branched on later.
func Generate(rec *store.Record, s press.Settings, eng Engine) (*press.Artifact, float64, error) {
	if rec == nil {
		return nil, 0, press.ErrNoSource
	}
	src := store.ResolveSource(rec)
	if src == nil {
		return nil, 0, fmt.Errorf("%w for %s", press.ErrNoSource, rec.Name)
	}
	art, err := eng.Compress(src, s)
	if err != nil {
		return nil, 0, err
	}
	return art, press.Ratio(rec.OriginalSize, art.Size), nil
}

// humanError turns a pipeline failure into the message shown in the pane.
func humanError(err error) string {
	switch {
	case errors.Is(err, press.ErrNoSource):
		return "No source available. Re-add the image to regenerate previews."
	case errors.Is(err, press.ErrDecode):
		return "The image could not be decoded. It may be corrupt or in an unsupported format."
	case errors.Is(err, press.ErrEncode):
		return "Encoding the preview failed. Try a different output format."
	case errors.Is(err, press.ErrRender):
		return "Preparing the preview output failed. Check the cache directory."
	default:
		return err.Error()
	}
}
