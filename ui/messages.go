package ui

import "github.com/okvalo/pixpress/press"

// Message types for the studio model.

// regenTickMsg fires when the debounce window for a preview regeneration
// expires. It carries the generation captured when the trigger happened so
// superseded ticks can be ignored.
type regenTickMsg struct {
	gen uint64
}

// previewResultMsg is the outcome of one preview regeneration.
type previewResultMsg struct {
	gen      uint64
	artifact *press.Artifact
	ratio    float64
	err      error
}

// compressDoneMsg reports a single-image compression finishing.
type compressDoneMsg struct {
	id  string
	err error
}

// compressStepMsg drives batch compression one image at a time so the
// progress bar can update between images.
type compressStepMsg struct {
	id        string
	err       error
	remaining []string
	done      int
	failed    int
	total     int
}

// imageDroppedMsg carries one settled file from the drop-folder watcher.
type imageDroppedMsg struct {
	path string
}

// watcherClosedMsg signals the drop-folder watcher shut down.
type watcherClosedMsg struct{}

// exportDoneMsg reports an export or archive operation finishing.
type exportDoneMsg struct {
	count int
	path  string
	err   error
}
