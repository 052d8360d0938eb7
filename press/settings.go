package press

// Format is the output encoding for compressed images.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// Formats lists the supported output formats in cycle order.
var Formats = []Format{FormatJPEG, FormatPNG, FormatWebP}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// Valid reports whether f is a known output format.
func (f Format) Valid() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatWebP:
		return true
	}
	return false
}

// Next returns the next format in cycle order.
func (f Format) Next() Format {
	for i, v := range Formats {
		if v == f {
			return Formats[(i+1)%len(Formats)]
		}
	}
	return FormatJPEG
}

// Settings holds one immutable snapshot of compression parameters.
// Snapshots are compared with Equal; a committed artifact is stamped with
// the exact snapshot that produced it.
type Settings struct {
	Quality          float64 `json:"quality"`   // 0..1
	MaxWidth         int     `json:"maxWidth"`  // enforced only when ResizeEnabled
	MaxHeight        int     `json:"maxHeight"` // enforced only when ResizeEnabled
	Format           Format  `json:"outputFormat"`
	PreserveExif     bool    `json:"preserveExif"` // advisory: re-encoding strips metadata regardless
	ApplySharpening  bool    `json:"applySharpening"`
	SharpeningAmount float64 `json:"sharpeningAmount"` // 0..1, used only when ApplySharpening
	ResizeEnabled    bool    `json:"resizeEnabled"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		Quality:          0.8,
		MaxWidth:         1920,
		MaxHeight:        1080,
		Format:           FormatJPEG,
		PreserveExif:     false,
		ApplySharpening:  false,
		SharpeningAmount: 0.5,
		ResizeEnabled:    true,
	}
}

// Equal reports whether two snapshots match on every field. Any single
// field differing makes the snapshots unequal.
func (s Settings) Equal(o Settings) bool {
	return s.Quality == o.Quality &&
		s.MaxWidth == o.MaxWidth &&
		s.MaxHeight == o.MaxHeight &&
		s.Format == o.Format &&
		s.PreserveExif == o.PreserveExif &&
		s.ApplySharpening == o.ApplySharpening &&
		s.SharpeningAmount == o.SharpeningAmount &&
		s.ResizeEnabled == o.ResizeEnabled
}

// Clamp normalizes out-of-range values to their nearest legal value.
func (s Settings) Clamp() Settings {
	if s.Quality < 0.01 {
		s.Quality = 0.01
	}
	if s.Quality > 1 {
		s.Quality = 1
	}
	if s.SharpeningAmount < 0 {
		s.SharpeningAmount = 0
	}
	if s.SharpeningAmount > 1 {
		s.SharpeningAmount = 1
	}
	if s.MaxWidth < 1 {
		s.MaxWidth = 1
	}
	if s.MaxHeight < 1 {
		s.MaxHeight = 1
	}
	if !s.Format.Valid() {
		s.Format = FormatJPEG
	}
	return s
}
