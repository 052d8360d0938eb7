// Package preview decides which artifact, the committed compression or a
// freshly rendered live preview, is authoritative for the selected image,
// and tracks the regeneration of the live preview as settings change.
package preview

import (
	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
)

// Header and badge labels for the comparison pane.
const (
	HeaderLive      = "Live Preview"
	HeaderCommitted = "Before/After Comparison"

	BadgeLive      = "Live Preview"
	BadgeCommitted = "Compressed"
)

// Live is the ephemeral state of the live preview for the selected image.
// It is owned by the Reconciler, recomputed rather than persisted, and
// never merged into the registry.
type Live struct {
	Artifact   *press.Artifact
	Size       int64
	Ratio      float64
	Generating bool
	Err        string
}

// URL returns the renderable reference of the live artifact, if any.
func (l Live) URL() string { return l.Artifact.URL() }

// Display is the projection the comparison pane renders from.
type Display struct {
	OriginalURL  string
	PreviewURL   string
	PreviewSize  int64
	PreviewRatio float64
	Header       string
	Badge        string
	UseLive      bool
}

// UseLive reports whether the live preview, rather than the committed
// artifact, is authoritative for rec under the current settings: only a
// compressed record whose stamped settings differ from the current ones
// prefers the live rendering. A record without a committed artifact always
// resolves to the live preview once one exists.
func UseLive(rec *store.Record, current press.Settings) bool {
	if rec == nil {
		return true
	}
	return rec.Status == store.StatusCompressed &&
		rec.CommittedSettings != nil &&
		!current.Equal(*rec.CommittedSettings)
}

// Project builds the display state for rec. The original side never
// depends on settings; the preview side is live or committed per UseLive,
// falling back to live values for records never compressed.
func Project(rec *store.Record, current press.Settings, live Live) Display {
	d := Display{}
	if rec == nil {
		d.Header = HeaderLive
		d.Badge = BadgeLive
		d.UseLive = true
		return d
	}

	d.OriginalURL = rec.OriginalURL
	hasCommitted := rec.Status == store.StatusCompressed && rec.Committed != nil
	d.UseLive = UseLive(rec, current)

	if d.UseLive || !hasCommitted {
		d.PreviewURL = live.URL()
		d.PreviewSize = live.Size
		d.PreviewRatio = live.Ratio
	} else {
		d.PreviewURL = rec.Committed.URL()
		d.PreviewSize = rec.CommittedSize
		d.PreviewRatio = rec.CommittedRatio
	}

	if d.UseLive || !hasCommitted {
		d.Header = HeaderLive
	} else {
		d.Header = HeaderCommitted
	}
	if d.UseLive {
		d.Badge = BadgeLive
	} else if hasCommitted {
		d.Badge = BadgeCommitted
	} else {
		d.Badge = BadgeLive
	}
	return d
}
