package ui

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
)

func newTestModel(t *testing.T) StudioModel {
	t.Helper()
	eng, err := press.NewEngine(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := store.NewRegistry(nil, nil)
	settings := store.NewSettingsStore(nil, nil)
	return NewStudioModel(reg, settings, eng, nil, t.TempDir(), "test")
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func writeStudioPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
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

func TestSettingsKeysUpdateStore(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("f"))
	m = updated.(StudioModel)
	if got := m.settings.Get().Format; got != press.FormatPNG {
		t.Errorf("expected format cycled to png, got %s", got)
	}

	updated, _ = m.Update(keyMsg("-"))
	m = updated.(StudioModel)
	if got := m.settings.Get().Quality; got != 0.75 {
		t.Errorf("expected quality 0.75, got %v", got)
	}

	updated, _ = m.Update(keyMsg("r"))
	m = updated.(StudioModel)
	if m.settings.Get().ResizeEnabled {
		t.Error("expected resize toggled off")
	}
}

func TestSettingsKeyArmsRegeneration(t *testing.T) {
	m := newTestModel(t)

	before := m.reconciler.Generation()
	_, cmd := m.Update(keyMsg("+"))
	if cmd == nil {
		t.Fatal("settings change must schedule a regeneration tick")
	}
	if m.reconciler.Generation() != before+1 {
		t.Errorf("expected generation bump, got %d", m.reconciler.Generation())
	}
	if !m.reconciler.Live().Generating {
		t.Error("live preview should be marked stale")
	}
}

// Rapid settings changes collapse into a single regeneration: only the
// tick carrying the final generation actually starts a run.
func TestRapidChangesCollapse(t *testing.T) {
	m := newTestModel(t)

	dir := t.TempDir()
	m.registry.AddImages([]string{writeStudioPNG(t, dir, "a.png")})
	m.refreshList()
	m.reconciler.SelectImage(m.registry.SelectedID())

	var gens []uint64
	for _, key := range []string{"+", "+", "-"} {
		updated, _ := m.Update(keyMsg(key))
		m = updated.(StudioModel)
		gens = append(gens, m.reconciler.Generation())
	}

	started := 0
	for _, gen := range gens {
		updated, cmd := m.Update(regenTickMsg{gen: gen})
		m = updated.(StudioModel)
		if cmd != nil {
			started++
		}
	}
	if started != 1 {
		t.Errorf("expected exactly 1 regeneration started, got %d", started)
	}
}

func TestStaleResultReArmsCurrentGeneration(t *testing.T) {
	m := newTestModel(t)

	dir := t.TempDir()
	m.registry.AddImages([]string{writeStudioPNG(t, dir, "a.png")})
	m.refreshList()

	gen1 := m.reconciler.Invalidate()
	if !m.reconciler.Begin(gen1) {
		t.Fatal("Begin(gen1) should succeed")
	}
	// A second change arrives while gen1 renders
	m.reconciler.Invalidate()

	// gen1 finishes; its result is stale, and the current generation's
	// run must start immediately.
	updated, cmd := m.Update(previewResultMsg{gen: gen1, err: press.ErrDecode})
	m = updated.(StudioModel)
	if cmd == nil {
		t.Fatal("stale publish should start the current generation's run")
	}
	if m.reconciler.Live().Err != "" {
		t.Errorf("stale failure must not surface: %q", m.reconciler.Live().Err)
	}
}

func TestCompareKeysMoveDivider(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(StudioModel)
	if m.compare.Position != 55 {
		t.Errorf("expected divider at 55, got %v", m.compare.Position)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftLeft})
	m = updated.(StudioModel)
	if m.compare.Position != 54 {
		t.Errorf("expected divider at 54, got %v", m.compare.Position)
	}
}

func TestRemoveLastImageResetsPreview(t *testing.T) {
	m := newTestModel(t)

	dir := t.TempDir()
	m.registry.AddImages([]string{writeStudioPNG(t, dir, "a.png")})
	m.refreshList()
	m.reconciler.SelectImage(m.registry.SelectedID())

	updated, _ := m.Update(keyMsg("x"))
	m = updated.(StudioModel)
	if m.registry.Len() != 0 {
		t.Errorf("expected empty registry, got %d records", m.registry.Len())
	}
	live := m.reconciler.Live()
	if live.Artifact != nil || live.Generating {
		t.Errorf("expected live preview reset, got %+v", live)
	}
}

func TestBatchStepAdvances(t *testing.T) {
	m := newTestModel(t)
	m.batching = true
	m.batchTotal = 2

	updated, cmd := m.Update(compressStepMsg{id: "a", remaining: []string{"b"}, total: 2})
	m = updated.(StudioModel)
	if cmd == nil {
		t.Fatal("expected next batch step scheduled")
	}
	if m.batchDone != 1 {
		t.Errorf("expected 1 done, got %d", m.batchDone)
	}

	updated, cmd = m.Update(compressStepMsg{id: "b", remaining: nil, total: 2})
	m = updated.(StudioModel)
	if cmd != nil {
		t.Error("no further step after last image")
	}
	if m.batching {
		t.Error("batch should be finished")
	}
}
