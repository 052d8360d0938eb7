package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okvalo/pixpress/export"
	"github.com/okvalo/pixpress/intake"
	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/preview"
	"github.com/okvalo/pixpress/store"
	"github.com/okvalo/pixpress/utils"
)

// regenDelay is the debounce window between a settings change and the
// preview regeneration it triggers. Rapid changes collapse into the last
// one because earlier ticks carry superseded generations.
const regenDelay = 300 * time.Millisecond

// Image list entry wrapping a registry record
type imageItem struct {
	rec *store.Record
}

func (i imageItem) FilterValue() string { return i.rec.Name }
func (i imageItem) Title() string       { return i.rec.Name }
func (i imageItem) Description() string {
	switch i.rec.Status {
	case store.StatusCompressed:
		return fmt.Sprintf("✓ %s → %s (%s)",
			utils.FormatSize(i.rec.OriginalSize),
			utils.FormatSize(i.rec.CommittedSize),
			utils.FormatRatio(i.rec.CommittedRatio))
	case store.StatusCompressing:
		return fmt.Sprintf("🔄 %s", utils.FormatSize(i.rec.OriginalSize))
	case store.StatusError:
		return fmt.Sprintf("❌ %s", i.rec.Error)
	default:
		return utils.FormatSize(i.rec.OriginalSize)
	}
}

// StudioModel is the interactive compression studio
type StudioModel struct {
	registry   *store.Registry
	settings   *store.SettingsStore
	engine     *press.Engine
	reconciler *preview.Reconciler
	watcher    *intake.Watcher

	imageList list.Model
	batchBar  progress.Model
	compare   CompareModel

	// Batch compression state
	batchTotal  int
	batchDone   int
	batchFailed int
	batching    bool

	exportDir string

	// Layout
	width  int
	height int

	status   string
	showHelp bool
	quitting bool

	// Version for display
	Version string
}

// NewStudioModel creates the studio model. watcher may be nil when no drop
// folder is configured.
func NewStudioModel(reg *store.Registry, settings *store.SettingsStore, eng *press.Engine, w *intake.Watcher, exportDir, version string) StudioModel {
	imageList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	imageList.Title = "Images"
	imageList.SetShowHelp(false)
	imageList.SetFilteringEnabled(false)

	m := StudioModel{
		registry:   reg,
		settings:   settings,
		engine:     eng,
		reconciler: preview.NewReconciler(),
		watcher:    w,
		imageList:  imageList,
		batchBar:   progress.New(progress.WithDefaultGradient()),
		compare:    NewCompareModel(),
		exportDir:  exportDir,
		Version:    version,
	}
	m.refreshList()
	return m
}

// Init implements tea.Model
func (m StudioModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watcher != nil {
		cmds = append(cmds, m.waitForDrop())
	}
	if id := m.registry.SelectedID(); id != "" {
		gen := m.reconciler.SelectImage(id)
		cmds = append(cmds, regenTick(gen))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.imageList.SetSize(msg.Width/3, msg.Height-6)
		m.batchBar.Width = msg.Width / 3

	case regenTickMsg:
		if m.reconciler.Begin(msg.gen) {
			return m, m.generate(msg.gen)
		}

	case previewResultMsg:
		m.reconciler.Publish(msg.gen, msg.artifact, msg.ratio, msg.err)
		// A result published for a superseded generation leaves the live
		// preview still marked stale; start the current generation's run.
		if m.reconciler.Live().Generating {
			cur := m.reconciler.Generation()
			if m.reconciler.Begin(cur) {
				return m, m.generate(cur)
			}
		}

	case compressDoneMsg:
		m.refreshList()
		if msg.err != nil {
			m.status = ErrorStyle.Render(fmt.Sprintf("Compression failed: %v", msg.err))
		} else if rec := m.registry.Get(msg.id); rec != nil {
			m.status = SuccessStyle.Render(fmt.Sprintf("Compressed %s: %s → %s",
				rec.Name,
				utils.FormatSize(rec.OriginalSize),
				utils.FormatSize(rec.CommittedSize)))
		}

	case compressStepMsg:
		if msg.err != nil {
			m.batchFailed++
		} else {
			m.batchDone++
		}
		m.refreshList()
		if len(msg.remaining) == 0 {
			m.batching = false
			m.status = SuccessStyle.Render(fmt.Sprintf("Batch done: %d compressed, %d failed", m.batchDone, m.batchFailed))
			return m, nil
		}
		return m, m.compressNext(msg.remaining, msg.total)

	case imageDroppedMsg:
		added := m.registry.AddImages([]string{msg.path})
		m.refreshList()
		cmds := []tea.Cmd{m.waitForDrop()}
		if len(added) > 0 {
			m.status = InfoStyle.Render(fmt.Sprintf("Added %s from drop folder", filepath.Base(msg.path)))
			if m.registry.SelectedID() == added[0].ID {
				gen := m.reconciler.SelectImage(added[0].ID)
				cmds = append(cmds, regenTick(gen))
			}
		}
		return m, tea.Batch(cmds...)

	case watcherClosedMsg:
		m.watcher = nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = ErrorStyle.Render(fmt.Sprintf("Export failed: %v", msg.err))
		} else {
			m.status = SuccessStyle.Render(fmt.Sprintf("Exported %d file(s) to %s", msg.count, msg.path))
		}
	}

	return m, nil
}

func (m StudioModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.reconciler.Reset()
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	// Comparison divider
	case "left":
		m.compare = m.compare.Move(-compareCoarseStep)
		return m, nil
	case "right":
		m.compare = m.compare.Move(compareCoarseStep)
		return m, nil
	case "shift+left":
		m.compare = m.compare.Move(-compareFineStep)
		return m, nil
	case "shift+right":
		m.compare = m.compare.Move(compareFineStep)
		return m, nil

	// Settings
	case "+", "=":
		return m, m.applySettings(func(s *press.Settings) { s.Quality += 0.05 })
	case "-":
		return m, m.applySettings(func(s *press.Settings) { s.Quality -= 0.05 })
	case "f":
		return m, m.applySettings(func(s *press.Settings) { s.Format = s.Format.Next() })
	case "r":
		return m, m.applySettings(func(s *press.Settings) { s.ResizeEnabled = !s.ResizeEnabled })
	case "w":
		return m, m.applySettings(func(s *press.Settings) { s.MaxWidth -= 160 })
	case "W":
		return m, m.applySettings(func(s *press.Settings) { s.MaxWidth += 160 })
	case "h":
		return m, m.applySettings(func(s *press.Settings) { s.MaxHeight -= 90 })
	case "H":
		return m, m.applySettings(func(s *press.Settings) { s.MaxHeight += 90 })
	case "s":
		return m, m.applySettings(func(s *press.Settings) { s.ApplySharpening = !s.ApplySharpening })
	case "a":
		return m, m.applySettings(func(s *press.Settings) { s.SharpeningAmount -= 0.1 })
	case "A":
		return m, m.applySettings(func(s *press.Settings) { s.SharpeningAmount += 0.1 })
	case "e":
		return m, m.applySettings(func(s *press.Settings) { s.PreserveExif = !s.PreserveExif })

	// Actions
	case "enter", "c":
		rec := m.registry.Selected()
		if rec == nil || rec.Status == store.StatusCompressing {
			return m, nil
		}
		m.status = InfoStyle.Render(fmt.Sprintf("Compressing %s…", rec.Name))
		return m, m.compressOne(rec.ID)

	case "C":
		if m.batching {
			return m, nil
		}
		var ids []string
		for _, rec := range m.registry.Records() {
			if rec.Status != store.StatusCompressed && rec.Status != store.StatusCompressing {
				ids = append(ids, rec.ID)
			}
		}
		if len(ids) == 0 {
			m.status = InfoStyle.Render("Nothing to compress")
			return m, nil
		}
		m.batching = true
		m.batchTotal = len(ids)
		m.batchDone = 0
		m.batchFailed = 0
		return m, m.compressNext(ids, len(ids))

	case "x":
		if id := m.registry.SelectedID(); id != "" {
			m.registry.Remove(id)
			m.refreshList()
			if next := m.registry.SelectedID(); next != "" {
				gen := m.reconciler.SelectImage(next)
				return m, regenTick(gen)
			}
			m.reconciler.Reset()
		}
		return m, nil

	case "X":
		m.registry.Clear()
		m.reconciler.Reset()
		m.refreshList()
		m.status = InfoStyle.Render("Cleared all images")
		return m, nil

	case "o":
		if rec := m.registry.Selected(); rec != nil {
			return m, m.exportOne(rec)
		}
		return m, nil
	case "O":
		return m, m.exportAll()
	case "z":
		return m, m.exportZip()
	}

	// Everything else drives the image list; a cursor move changes the
	// selection and triggers a preview for the newly selected image.
	before := m.selectedItemID()
	var cmd tea.Cmd
	m.imageList, cmd = m.imageList.Update(msg)
	if after := m.selectedItemID(); after != "" && after != before {
		m.registry.Select(after)
		gen := m.reconciler.SelectImage(after)
		return m, tea.Batch(cmd, regenTick(gen))
	}
	return m, cmd
}

// View implements tea.Model
func (m StudioModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	header := HeaderStyle.Render(fmt.Sprintf("PixPress %s", m.Version))

	paneWidth := m.width - m.width/3 - 4
	if paneWidth < 20 {
		paneWidth = 40
	}

	rec := m.registry.Selected()
	live := m.reconciler.Live()
	display := preview.Project(rec, m.settings.Get(), live)
	comparePane := m.compare.View(paneWidth, display, live)

	sections := []string{
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, m.imageList.View(), "  ", comparePane+"\n"+m.settingsView()),
	}

	if m.batching {
		pct := float64(m.batchDone+m.batchFailed) / float64(m.batchTotal)
		sections = append(sections, fmt.Sprintf("Batch: %s (%d/%d)",
			m.batchBar.ViewAs(pct), m.batchDone+m.batchFailed, m.batchTotal))
	}

	if m.status != "" {
		sections = append(sections, m.status)
	}

	if m.showHelp {
		sections = append(sections, m.helpView())
	} else {
		sections = append(sections, HelpStyle.Render("Controls: [c] Compress  [C] All  [o/O] Export  [z] Zip  [?] Help  [q] Quit"))
	}

	return strings.Join(sections, "\n\n")
}

func (m StudioModel) settingsView() string {
	s := m.settings.Get()
	resize := "off"
	if s.ResizeEnabled {
		resize = fmt.Sprintf("%dx%d", s.MaxWidth, s.MaxHeight)
	}
	sharpen := "off"
	if s.ApplySharpening {
		sharpen = fmt.Sprintf("%.1f", s.SharpeningAmount)
	}
	exif := "strip"
	if s.PreserveExif {
		exif = "keep"
	}
	line := fmt.Sprintf("quality %.2f  format %s  resize %s  sharpen %s  exif %s",
		s.Quality, s.Format, resize, sharpen, exif)
	return SettingStyle.Render(line)
}

func (m StudioModel) helpView() string {
	rows := []string{
		"Settings:  [+/-] quality  [f] format  [r] resize  [w/W] width  [h/H] height",
		"           [s] sharpen  [a/A] amount  [e] exif",
		"Images:    [↑/↓] select  [c/enter] compress  [C] compress all  [x] remove  [X] clear",
		"Compare:   [←/→] divider  [shift+←/→] fine",
		"Export:    [o] selected  [O] all  [z] zip archive",
	}
	return HelpStyle.Render(strings.Join(rows, "\n"))
}

func (m *StudioModel) refreshList() {
	records := m.registry.Records()
	items := make([]list.Item, len(records))
	cursor := 0
	for i, rec := range records {
		items[i] = imageItem{rec: rec}
		if rec.ID == m.registry.SelectedID() {
			cursor = i
		}
	}
	m.imageList.SetItems(items)
	if len(items) > 0 {
		m.imageList.Select(cursor)
	}
}

func (m StudioModel) selectedItemID() string {
	if item, ok := m.imageList.SelectedItem().(imageItem); ok {
		return item.rec.ID
	}
	return ""
}

// applySettings mutates a copy of the settings through the store, marks the
// live preview stale, and arms the debounced regeneration tick.
func (m StudioModel) applySettings(fn func(*press.Settings)) tea.Cmd {
	m.settings.Update(fn)
	gen := m.reconciler.Invalidate()
	return regenTick(gen)
}

// regenTick schedules the debounced regeneration for gen.
func regenTick(gen uint64) tea.Cmd {
	return tea.Tick(regenDelay, func(time.Time) tea.Msg {
		return regenTickMsg{gen: gen}
	})
}

// generate runs one preview regeneration off the update loop. The record
// and settings are captured now so the render reflects the state that
// triggered it.
func (m StudioModel) generate(gen uint64) tea.Cmd {
	rec := m.registry.Selected()
	s := m.settings.Get()
	return func() tea.Msg {
		art, ratio, err := preview.Generate(rec, s, m.engine)
		return previewResultMsg{gen: gen, artifact: art, ratio: ratio, err: err}
	}
}

func (m StudioModel) compressOne(id string) tea.Cmd {
	s := m.settings.Get()
	return func() tea.Msg {
		err := m.registry.Compress(id, m.engine, s)
		return compressDoneMsg{id: id, err: err}
	}
}

func (m StudioModel) compressNext(ids []string, total int) tea.Cmd {
	s := m.settings.Get()
	return func() tea.Msg {
		id := ids[0]
		err := m.registry.Compress(id, m.engine, s)
		return compressStepMsg{id: id, err: err, remaining: ids[1:], total: total}
	}
}

func (m StudioModel) exportOne(rec *store.Record) tea.Cmd {
	dir := m.exportDir
	return func() tea.Msg {
		path, err := export.Save(rec, dir)
		return exportDoneMsg{count: 1, path: path, err: err}
	}
}

func (m StudioModel) exportAll() tea.Cmd {
	records := m.registry.Records()
	dir := m.exportDir
	return func() tea.Msg {
		n, err := export.SaveAll(records, dir)
		return exportDoneMsg{count: n, path: dir, err: err}
	}
}

func (m StudioModel) exportZip() tea.Cmd {
	records := m.registry.Records()
	path := filepath.Join(m.exportDir, "compressed_images.zip")
	return func() tea.Msg {
		n, err := export.WriteZip(records, path)
		return exportDoneMsg{count: n, path: path, err: err}
	}
}

func (m StudioModel) waitForDrop() tea.Cmd {
	ch := m.watcher.Paths()
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return imageDroppedMsg{path: path}
	}
}
