package press

import (
	"testing"
)

func TestSettingsEqualIdentical(t *testing.T) {
	a := DefaultSettings()
	b := DefaultSettings()

	if !a.Equal(b) {
		t.Error("identical snapshots should be equal")
	}
	if !b.Equal(a) {
		t.Error("equality should be symmetric")
	}
}

func TestSettingsEqualSingleFieldFlips(t *testing.T) {
	base := DefaultSettings()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"Quality", func(s *Settings) { s.Quality = 0.5 }},
		{"MaxWidth", func(s *Settings) { s.MaxWidth = 800 }},
		{"MaxHeight", func(s *Settings) { s.MaxHeight = 600 }},
		{"Format", func(s *Settings) { s.Format = FormatWebP }},
		{"PreserveExif", func(s *Settings) { s.PreserveExif = !s.PreserveExif }},
		{"ApplySharpening", func(s *Settings) { s.ApplySharpening = !s.ApplySharpening }},
		{"SharpeningAmount", func(s *Settings) { s.SharpeningAmount = 0.9 }},
		{"ResizeEnabled", func(s *Settings) { s.ResizeEnabled = !s.ResizeEnabled }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			if base.Equal(changed) {
				t.Errorf("changing %s should make snapshots unequal", tt.name)
			}
			// Changing the field back restores equality
			restored := base
			if !base.Equal(restored) {
				t.Errorf("copy of base should stay equal after %s roundtrip", tt.name)
			}
		})
	}
}

func TestSettingsClamp(t *testing.T) {
	tests := []struct {
		name     string
		in       Settings
		check    func(Settings) bool
		expected string
	}{
		{
			"quality below range",
			Settings{Quality: -1, Format: FormatJPEG, MaxWidth: 100, MaxHeight: 100},
			func(s Settings) bool { return s.Quality == 0.01 },
			"quality clamped up to 0.01",
		},
		{
			"quality above range",
			Settings{Quality: 3, Format: FormatJPEG, MaxWidth: 100, MaxHeight: 100},
			func(s Settings) bool { return s.Quality == 1 },
			"quality clamped down to 1",
		},
		{
			"sharpening above range",
			Settings{Quality: 0.5, SharpeningAmount: 1.5, Format: FormatPNG, MaxWidth: 100, MaxHeight: 100},
			func(s Settings) bool { return s.SharpeningAmount == 1 },
			"sharpening clamped to 1",
		},
		{
			"unknown format",
			Settings{Quality: 0.5, Format: Format("tiff"), MaxWidth: 100, MaxHeight: 100},
			func(s Settings) bool { return s.Format == FormatJPEG },
			"format falls back to jpeg",
		},
		{
			"degenerate dimensions",
			Settings{Quality: 0.5, Format: FormatJPEG, MaxWidth: 0, MaxHeight: -5},
			func(s Settings) bool { return s.MaxWidth == 1 && s.MaxHeight == 1 },
			"dimensions clamped to 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(); !tt.check(got) {
				t.Errorf("expected %s, got %+v", tt.expected, got)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{FormatJPEG, ".jpg"},
		{FormatPNG, ".png"},
		{FormatWebP, ".webp"},
		{Format("bogus"), ".jpg"},
	}

	for _, tt := range tests {
		if got := tt.format.Ext(); got != tt.expected {
			t.Errorf("Ext(%q) = %q, expected %q", tt.format, got, tt.expected)
		}
	}
}

func TestFormatNextCycles(t *testing.T) {
	f := FormatJPEG
	seen := map[Format]bool{}
	for i := 0; i < len(Formats); i++ {
		seen[f] = true
		f = f.Next()
	}
	if f != FormatJPEG {
		t.Errorf("cycling through all formats should return to jpeg, got %q", f)
	}
	if len(seen) != len(Formats) {
		t.Errorf("expected to visit %d formats, visited %d", len(Formats), len(seen))
	}
}
