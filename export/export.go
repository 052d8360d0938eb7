// Package export writes committed compression results out of the cache,
// either as individual files or bundled into a zip archive.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
)

// ErrNotCompressed is returned when an image has no committed result to export.
var ErrNotCompressed = errors.New("image has not been compressed")

// FileName is the download name for a committed result. The original base
// name is kept and the extension is swapped to match the committed output
// format, so "holiday.png" compressed to JPEG exports as
// "compressed_holiday.jpg".
func FileName(rec *store.Record) string {
	base := strings.TrimSuffix(rec.Name, filepath.Ext(rec.Name))
	ext := filepath.Ext(rec.Name)
	if rec.CommittedSettings != nil {
		ext = rec.CommittedSettings.Format.Ext()
	}
	return "compressed_" + base + ext
}

// Save copies the committed artifact of rec into dir and returns the
// written path.
func Save(rec *store.Record, dir string) (string, error) {
	if rec.Status != store.StatusCompressed || rec.Committed == nil {
		return "", fmt.Errorf("export %s: %w", rec.Name, ErrNotCompressed)
	}

	src, err := os.Open(rec.Committed.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open compressed result: %w", err)
	}
	defer src.Close()

	out := filepath.Join(dir, FileName(rec))
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return out, nil
}

// SaveAll exports every compressed record into dir. Records without a
// committed result are skipped. Returns the number exported and the first
// error encountered, if any.
func SaveAll(records []*store.Record, dir string) (int, error) {
	exported := 0
	for _, rec := range records {
		if rec.Status != store.StatusCompressed || rec.Committed == nil {
			continue
		}
		if _, err := Save(rec, dir); err != nil {
			return exported, err
		}
		exported++
	}
	return exported, nil
}

// WriteZip bundles every compressed record into a single archive at path.
// Returns the number of entries written.
func WriteZip(records []*store.Record, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	written := 0
	names := make(map[string]int)
	for _, rec := range records {
		if rec.Status != store.StatusCompressed || rec.Committed == nil {
			continue
		}
		name := FileName(rec)
		// Two originals can share a base name; suffix duplicates so no
		// entry silently overwrites another.
		if n := names[name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
		}
		names[FileName(rec)]++

		if err := addEntry(zw, rec.Committed, name); err != nil {
			zw.Close()
			os.Remove(path)
			return written, err
		}
		written++
	}

	if err := zw.Close(); err != nil {
		os.Remove(path)
		return written, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return written, nil
}

func addEntry(zw *zip.Writer, art *press.Artifact, name string) error {
	src, err := os.Open(art.Path)
	if err != nil {
		return fmt.Errorf("failed to open compressed result: %w", err)
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}
	return nil
}
