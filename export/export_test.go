package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
)

func compressedRecord(t *testing.T, name string, format press.Format, payload []byte) *store.Record {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact"+format.Ext())
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	s := press.DefaultSettings()
	s.Format = format
	return &store.Record{
		ID:                "id-" + name,
		Name:              name,
		Status:            store.StatusCompressed,
		Committed:         &press.Artifact{Path: path, Size: int64(len(payload))},
		CommittedSize:     int64(len(payload)),
		CommittedSettings: &s,
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		original string
		format   press.Format
		expected string
	}{
		{"Same format", "photo.jpg", press.FormatJPEG, "compressed_photo.jpg"},
		{"Format swap", "holiday.png", press.FormatJPEG, "compressed_holiday.jpg"},
		{"To webp", "shot.jpeg", press.FormatWebP, "compressed_shot.webp"},
		{"Multiple dots", "my.photo.png", press.FormatPNG, "compressed_my.photo.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := compressedRecord(t, tt.original, tt.format, []byte("x"))
			if got := FileName(rec); got != tt.expected {
				t.Errorf("FileName() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFileNameWithoutCommittedSettings(t *testing.T) {
	rec := &store.Record{Name: "photo.png"}
	if got := FileName(rec); got != "compressed_photo.png" {
		t.Errorf("expected original extension kept, got %q", got)
	}
}

func TestSave(t *testing.T) {
	rec := compressedRecord(t, "photo.png", press.FormatJPEG, []byte("compressed bytes"))
	dir := t.TempDir()

	out, err := Save(rec, dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(out) != "compressed_photo.jpg" {
		t.Errorf("unexpected export name %q", out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "compressed bytes" {
		t.Errorf("exported content mismatch: %q", data)
	}
}

func TestSaveNotCompressed(t *testing.T) {
	rec := &store.Record{Name: "photo.jpg", Status: store.StatusPending}
	if _, err := Save(rec, t.TempDir()); !errors.Is(err, ErrNotCompressed) {
		t.Errorf("expected ErrNotCompressed, got %v", err)
	}
}

func TestSaveAllSkipsPending(t *testing.T) {
	records := []*store.Record{
		compressedRecord(t, "a.jpg", press.FormatJPEG, []byte("a")),
		{Name: "b.jpg", Status: store.StatusPending},
		compressedRecord(t, "c.png", press.FormatPNG, []byte("c")),
	}
	dir := t.TempDir()

	n, err := SaveAll(records, dir)
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 exports, got %d", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected 2 files in export dir, got %d", len(entries))
	}
}

func TestWriteZip(t *testing.T) {
	records := []*store.Record{
		compressedRecord(t, "a.jpg", press.FormatJPEG, []byte("aaa")),
		{Name: "skip.jpg", Status: store.StatusError},
		compressedRecord(t, "b.png", press.FormatWebP, []byte("bbb")),
	}
	path := filepath.Join(t.TempDir(), "bundle.zip")

	n, err := WriteZip(records, path)
	if err != nil {
		t.Fatalf("WriteZip: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"compressed_a.jpg", "compressed_b.webp"} {
		if !names[want] {
			t.Errorf("archive missing entry %q, have %v", want, names)
		}
	}
}

func TestWriteZipDuplicateNames(t *testing.T) {
	records := []*store.Record{
		compressedRecord(t, "photo.jpg", press.FormatJPEG, []byte("one")),
		compressedRecord(t, "photo.jpg", press.FormatJPEG, []byte("two")),
	}
	path := filepath.Join(t.TempDir(), "bundle.zip")

	n, err := WriteZip(records, path)
	if err != nil {
		t.Fatalf("WriteZip: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 distinct entries, got %d", len(zr.File))
	}
	if zr.File[0].Name == zr.File[1].Name {
		t.Errorf("duplicate entry names not disambiguated: %q", zr.File[0].Name)
	}
}

func TestWriteZipEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	n, err := WriteZip(nil, path)
	if err != nil {
		t.Fatalf("WriteZip: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 entries, got %d", n)
	}
}
