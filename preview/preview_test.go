package preview

import (
	"testing"

	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
)

func compressedRecord(stamp press.Settings) *store.Record {
	return &store.Record{
		ID:                "id-1",
		Name:              "photo.jpg",
		OriginalSize:      1000000,
		OriginalURL:       "file:///pics/photo.jpg",
		Status:            store.StatusCompressed,
		Committed:         &press.Artifact{Path: "/cache/press-1.jpg", Size: 250000},
		CommittedSize:     250000,
		CommittedRatio:    4.00,
		CommittedSettings: &stamp,
	}
}

func TestUseLiveMatchingSettings(t *testing.T) {
	s := press.DefaultSettings()
	rec := compressedRecord(s)

	if UseLive(rec, s) {
		t.Error("matching settings should make the committed artifact authoritative")
	}
}

func TestUseLiveEachFieldChange(t *testing.T) {
	base := press.DefaultSettings()

	tests := []struct {
		name   string
		mutate func(*press.Settings)
	}{
		{"Quality", func(s *press.Settings) { s.Quality = 0.3 }},
		{"MaxWidth", func(s *press.Settings) { s.MaxWidth = 640 }},
		{"MaxHeight", func(s *press.Settings) { s.MaxHeight = 480 }},
		{"Format", func(s *press.Settings) { s.Format = press.FormatPNG }},
		{"PreserveExif", func(s *press.Settings) { s.PreserveExif = !s.PreserveExif }},
		{"ApplySharpening", func(s *press.Settings) { s.ApplySharpening = !s.ApplySharpening }},
		{"SharpeningAmount", func(s *press.Settings) { s.SharpeningAmount = 0.75 }},
		{"ResizeEnabled", func(s *press.Settings) { s.ResizeEnabled = !s.ResizeEnabled }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := compressedRecord(base)
			current := base
			tt.mutate(&current)
			if !UseLive(rec, current) {
				t.Errorf("changing %s should switch to the live preview", tt.name)
			}
		})
	}
}

func TestUseLiveNoCommit(t *testing.T) {
	statuses := []store.Status{store.StatusPending, store.StatusCompressing, store.StatusError}
	for _, status := range statuses {
		rec := &store.Record{ID: "x", Status: status}
		if !UseLive(rec, press.DefaultSettings()) {
			t.Errorf("status %s should always resolve to the live preview", status)
		}
	}
}

func TestUseLiveNilRecord(t *testing.T) {
	if !UseLive(nil, press.DefaultSettings()) {
		t.Error("nil record resolves to live")
	}
}

func TestProjectCommittedAuthoritative(t *testing.T) {
	s := press.DefaultSettings()
	rec := compressedRecord(s)
	live := Live{Artifact: &press.Artifact{Path: "/cache/live.jpg", Size: 111}, Size: 111, Ratio: 9.01}

	d := Project(rec, s, live)
	if d.UseLive {
		t.Fatal("expected committed to be authoritative")
	}
	if d.PreviewURL != rec.Committed.URL() || d.PreviewSize != 250000 || d.PreviewRatio != 4.00 {
		t.Errorf("preview side should come from the committed artifact: %+v", d)
	}
	if d.Header != HeaderCommitted {
		t.Errorf("expected header %q, got %q", HeaderCommitted, d.Header)
	}
	if d.Badge != BadgeCommitted {
		t.Errorf("expected badge %q, got %q", BadgeCommitted, d.Badge)
	}
	if d.OriginalURL != rec.OriginalURL {
		t.Error("original side must come from the record")
	}
}

func TestProjectLiveWhenSettingsDiffer(t *testing.T) {
	s := press.DefaultSettings()
	rec := compressedRecord(s)
	current := s
	current.Quality = 0.4
	live := Live{Artifact: &press.Artifact{Path: "/cache/live.jpg", Size: 111}, Size: 111, Ratio: 9.01}

	d := Project(rec, current, live)
	if !d.UseLive {
		t.Fatal("expected live to be authoritative")
	}
	if d.PreviewURL != live.URL() || d.PreviewSize != 111 || d.PreviewRatio != 9.01 {
		t.Errorf("preview side should come from the live state: %+v", d)
	}
	if d.Header != HeaderLive || d.Badge != BadgeLive {
		t.Errorf("expected live header/badge, got %q/%q", d.Header, d.Badge)
	}

	// The original side never moves with settings
	if d.OriginalURL != rec.OriginalURL {
		t.Error("original side must not depend on settings")
	}
}

func TestProjectNeverCompressedFallsBackToLive(t *testing.T) {
	rec := &store.Record{
		ID:          "id-2",
		Name:        "fresh.png",
		OriginalURL: "file:///pics/fresh.png",
		Status:      store.StatusPending,
	}
	live := Live{Artifact: &press.Artifact{Path: "/cache/live.png", Size: 500}, Size: 500, Ratio: 2.00}

	d := Project(rec, press.DefaultSettings(), live)
	if d.PreviewURL != live.URL() {
		t.Error("records never compressed should show the live preview")
	}
	if d.Header != HeaderLive || d.Badge != BadgeLive {
		t.Errorf("expected live labels, got %q/%q", d.Header, d.Badge)
	}
}
