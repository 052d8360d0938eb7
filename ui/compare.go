package ui

import (
	"fmt"
	"strings"

	"github.com/okvalo/pixpress/preview"
	"github.com/okvalo/pixpress/utils"
)

// Slider step sizes in percent. Arrow keys move coarsely; holding shift
// moves one percent at a time for fine alignment.
const (
	compareCoarseStep = 5.0
	compareFineStep   = 1.0
)

// CompareModel is the before/after divider for the comparison pane. The
// position is a percentage of pane width: 0 shows only the original, 100
// only the preview.
type CompareModel struct {
	Position float64
}

// NewCompareModel starts the divider at the midpoint.
func NewCompareModel() CompareModel {
	return CompareModel{Position: 50}
}

// Move shifts the divider by delta percent, clamped to [0, 100].
func (c CompareModel) Move(delta float64) CompareModel {
	c.Position += delta
	if c.Position < 0 {
		c.Position = 0
	}
	if c.Position > 100 {
		c.Position = 100
	}
	return c
}

// View renders the comparison pane for the given display projection. The
// original pane occupies Position percent of the width and the preview
// pane the rest, so moving the divider reveals one side over the other.
func (c CompareModel) View(width int, d preview.Display, live preview.Live) string {
	if width < 20 {
		width = 20
	}
	leftW := c.splitAt(width)
	rightW := width - leftW - 1

	var b strings.Builder
	b.WriteString(PaneHeaderStyle.Render(d.Header))
	b.WriteString("\n")

	if live.Err != "" && d.UseLive {
		b.WriteString(ErrorStyle.Render(live.Err))
		b.WriteString("\n")
		return b.String()
	}

	badge := d.Badge
	if live.Generating && d.UseLive {
		badge += " regenerating…"
	}
	b.WriteString(SettingStyle.Render(fitCell("Original", leftW)))
	b.WriteString(DividerStyle.Render("┃"))
	b.WriteString(BadgeStyle.Render(fitCell(badge, rightW)))
	b.WriteString("\n")

	b.WriteString(DividerStyle.Render(strings.Repeat("░", leftW) + "┃" + strings.Repeat("█", rightW)))
	b.WriteString("\n")

	stats := ""
	if d.PreviewURL != "" {
		stats = fmt.Sprintf("%s  %s", utils.FormatSize(d.PreviewSize), utils.FormatRatio(d.PreviewRatio))
	}
	b.WriteString(fitCell("", leftW))
	b.WriteString(DividerStyle.Render("┃"))
	b.WriteString(SettingStyle.Render(fitCell(stats, rightW)))
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render(fmt.Sprintf("divider at %.0f%%  [←/→ move, shift fine]", c.Position)))
	b.WriteString("\n")
	return b.String()
}

// splitAt returns the column count of the original pane, leaving one
// column for the divider and never collapsing either pane entirely at
// interior positions.
func (c CompareModel) splitAt(width int) int {
	left := int(c.Position / 100 * float64(width-1))
	if left < 0 {
		left = 0
	}
	if left > width-1 {
		left = width - 1
	}
	return left
}

// fitCell truncates or pads s to exactly w columns.
func fitCell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}
