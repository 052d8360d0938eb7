package press

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Engine re-encodes images according to a Settings snapshot. Encoded
// outputs land in CacheDir as transient Artifact files.
type Engine struct {
	cacheDir string
}

// NewEngine creates an engine writing artifacts under cacheDir, creating
// the directory if needed.
func NewEngine(cacheDir string) (*Engine, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Engine{cacheDir: cacheDir}, nil
}

// CacheDir returns the directory artifacts are written to.
func (e *Engine) CacheDir() string { return e.cacheDir }

// Compress decodes src, optionally resizes and sharpens it, and re-encodes
// it per the settings snapshot. Quality is ignored for PNG, per lossless
// convention. The caller owns the returned artifact.
func (e *Engine) Compress(src Source, s Settings) (*Artifact, error) {
	s = s.Clamp()

	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, src.Name(), err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, src.Name(), err)
	}

	orientation := Orientation(bytes.NewReader(data))
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, src.Name(), err)
	}
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	newW, newH := TargetSize(w, h, s)
	if newW != w || newH != h {
		img = imaging.Resize(img, newW, newH, imaging.Lanczos)
	}

	if s.ApplySharpening && s.SharpeningAmount > 0 {
		img = overlaySharpen(img, s.SharpeningAmount)
	}

	out, err := os.CreateTemp(e.cacheDir, "press-*"+s.Format.Ext())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := encode(out, img, s); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, s.Format, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, s.Format, err)
	}

	fi, err := os.Stat(out.Name())
	if err != nil {
		_ = os.Remove(out.Name())
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	return &Artifact{
		Path:   out.Name(),
		Size:   fi.Size(),
		Width:  newW,
		Height: newH,
	}, nil
}

// overlaySharpen boosts local contrast by blending each channel with
// itself in overlay mode (2ab below mid-gray, 1-2(1-a)(1-b) above),
// mixed with the source at amount. Not a convolution-based sharpen.
func overlaySharpen(img image.Image, amount float64) image.Image {
	if amount > 1 {
		amount = 1
	}
	dst := imaging.Clone(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(dst.Pix[i+c]) / 255
			var o float64
			if v < 0.5 {
				o = 2 * v * v
			} else {
				o = 1 - 2*(1-v)*(1-v)
			}
			dst.Pix[i+c] = uint8(math.Round((v + (o-v)*amount) * 255))
		}
	}
	return dst
}

func encode(w io.Writer, img image.Image, s Settings) error {
	switch s.Format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(qualityPercent(s.Quality))})
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: qualityPercent(s.Quality)})
	}
}

// qualityPercent maps a 0..1 quality to the 1..100 scale encoders use.
func qualityPercent(q float64) int {
	p := int(math.Round(q * 100))
	if p < 1 {
		p = 1
	}
	if p > 100 {
		p = 100
	}
	return p
}

// TargetSize computes the output dimensions for a source of w by h. When
// resizing applies, the scale is min(maxW/w, maxH/h) with floored results
// clamped to at least one pixel.
func TargetSize(w, h int, s Settings) (int, int) {
	if !s.ResizeEnabled || s.MaxWidth <= 0 || s.MaxHeight <= 0 {
		return w, h
	}
	if w <= s.MaxWidth && h <= s.MaxHeight {
		return w, h
	}
	scale := math.Min(float64(s.MaxWidth)/float64(w), float64(s.MaxHeight)/float64(h))
	newW := int(math.Floor(float64(w) * scale))
	newH := int(math.Floor(float64(h) * scale))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}

// Ratio computes originalSize / outputSize rounded to two decimal places.
func Ratio(originalSize, outputSize int64) float64 {
	if outputSize <= 0 {
		return 0
	}
	return math.Round(float64(originalSize)/float64(outputSize)*100) / 100
}
