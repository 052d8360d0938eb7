package press

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeGradientPNG(t *testing.T, dir, name string, seed uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: seed, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindSimilarImagesGroupsCopies(t *testing.T) {
	dir := t.TempDir()
	a := writeGradientPNG(t, dir, "a.png", 0)
	b := writeGradientPNG(t, dir, "b.png", 0)

	groups, err := FindSimilarImages([]string{a, b}, 10)
	if err != nil {
		t.Fatalf("FindSimilarImages: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group for identical images, got %d", len(groups))
	}
	if len(groups[0].Files) != 2 {
		t.Errorf("expected both copies grouped, got %v", groups[0].Files)
	}
	if groups[0].Hash == "" {
		t.Error("group should carry a representative hash")
	}
}

func TestFindSimilarImagesSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	a := writeGradientPNG(t, dir, "a.png", 0)
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	groups, err := FindSimilarImages([]string{a, bogus, filepath.Join(dir, "missing.png")}, 10)
	if err != nil {
		t.Fatalf("FindSimilarImages: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("single readable image cannot form a group, got %v", groups)
	}
}

func TestFindSimilarImagesNoGroupsForSingles(t *testing.T) {
	dir := t.TempDir()
	a := writeGradientPNG(t, dir, "a.png", 0)

	groups, err := FindSimilarImages([]string{a}, 10)
	if err != nil {
		t.Fatalf("FindSimilarImages: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}
