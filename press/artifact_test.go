package press

import (
	"os"
	"path/filepath"
	"testing"
)

func writeArtifactFile(t *testing.T, name string) *Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("encoded bytes"), 0o644); err != nil {
		t.Fatalf("writing artifact file: %v", err)
	}
	return &Artifact{Path: path, Size: 13}
}

func TestArtifactRelease(t *testing.T) {
	art := writeArtifactFile(t, "a.jpg")

	art.Release()
	if _, err := os.Stat(art.Path); !os.IsNotExist(err) {
		t.Error("backing file should be removed after Release")
	}
	if !art.Released() {
		t.Error("Released should report true after Release")
	}
}

func TestArtifactReleaseIdempotent(t *testing.T) {
	art := writeArtifactFile(t, "a.jpg")

	art.Release()
	art.Release() // must not panic or error
	if !art.Released() {
		t.Error("artifact should stay released")
	}
}

func TestArtifactReleaseDoesNotTouchNewerArtifact(t *testing.T) {
	old := writeArtifactFile(t, "old.jpg")
	replacement := writeArtifactFile(t, "new.jpg")

	old.Release()
	old.Release()

	if _, err := os.Stat(replacement.Path); err != nil {
		t.Errorf("newer artifact's file must survive releasing the old one: %v", err)
	}
	if replacement.Released() {
		t.Error("newer artifact must not be marked released")
	}
}

func TestNilArtifact(t *testing.T) {
	var art *Artifact
	art.Release() // no-op
	if art.URL() != "" {
		t.Error("nil artifact URL should be empty")
	}
	if !art.Released() {
		t.Error("nil artifact counts as released")
	}
}

func TestArtifactURL(t *testing.T) {
	art := &Artifact{Path: "/tmp/cache/press-1.jpg"}
	if got := art.URL(); got != "file:///tmp/cache/press-1.jpg" {
		t.Errorf("URL() = %q", got)
	}
}
