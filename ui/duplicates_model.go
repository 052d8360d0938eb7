package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okvalo/pixpress/utils"
)

// DuplicateGroup is one cluster of visually similar images. Hash is the
// representative perceptual hash; Files and Sizes are parallel slices.
type DuplicateGroup struct {
	Hash     string
	Files    []string
	Sizes    []int64
	Selected []bool // which files are selected for deletion
}

// DuplicatesModel is the TUI model for reviewing and deleting duplicate
// images.
type DuplicatesModel struct {
	groups       []DuplicateGroup
	currentGroup int
	currentFile  int

	width  int
	height int

	confirmingDeletion bool
	pendingDeletion    []string
	showHelp           bool

	quitting bool
}

// NewDuplicatesModel creates a duplicates TUI model from pre-built
// similarity groups.
func NewDuplicatesModel(groups []DuplicateGroup) DuplicatesModel {
	for i := range groups {
		if groups[i].Selected == nil {
			groups[i].Selected = make([]bool, len(groups[i].Files))
		}
	}
	return DuplicatesModel{
		groups:   groups,
		showHelp: true,
	}
}

// Init implements tea.Model
func (m DuplicatesModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m DuplicatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmingDeletion {
			return m.handleConfirmationInput(msg)
		}
		return m.handleNormalInput(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case DeletionCompleteMsg:
		m.handleDeletionComplete(msg)
	}

	return m, nil
}

func (m DuplicatesModel) handleNormalInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.groups) == 0 {
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "h", "?":
		m.showHelp = !m.showHelp

	case "up", "k":
		if m.currentFile > 0 {
			m.currentFile--
		}

	case "down", "j":
		if m.currentFile < len(m.groups[m.currentGroup].Files)-1 {
			m.currentFile++
		}

	case "left", "p":
		if m.currentGroup > 0 {
			m.currentGroup--
			m.currentFile = 0
		}

	case "right", "n":
		if m.currentGroup < len(m.groups)-1 {
			m.currentGroup++
			m.currentFile = 0
		}

	case " ": // spacebar to toggle selection
		group := &m.groups[m.currentGroup]
		group.Selected[m.currentFile] = !group.Selected[m.currentFile]

	case "a": // select every copy except the first, keeping one
		group := &m.groups[m.currentGroup]
		for i := range group.Selected {
			group.Selected[i] = i > 0
		}

	case "c": // clear all selections in current group
		group := &m.groups[m.currentGroup]
		for i := range group.Selected {
			group.Selected[i] = false
		}

	case "s": // skip current group
		if m.currentGroup < len(m.groups)-1 {
			m.currentGroup++
			m.currentFile = 0
		} else {
			m.quitting = true
			return m, tea.Quit
		}

	case "enter":
		return m.handleDeleteCommand()
	}

	return m, nil
}

func (m DuplicatesModel) handleConfirmationInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmingDeletion = false
		return m, m.executeDeleteCommand()

	case "n", "N", "ctrl+c", "esc":
		m.confirmingDeletion = false
		m.pendingDeletion = nil
	}

	return m, nil
}

func (m DuplicatesModel) handleDeleteCommand() (tea.Model, tea.Cmd) {
	var selectedFiles []string

	// Collect selected files from ALL groups, not just the current one
	for _, group := range m.groups {
		for i, selected := range group.Selected {
			if selected {
				selectedFiles = append(selectedFiles, group.Files[i])
			}
		}
	}

	if len(selectedFiles) == 0 {
		return m, nil
	}

	m.pendingDeletion = selectedFiles
	m.confirmingDeletion = true
	return m, nil
}

func (m DuplicatesModel) executeDeleteCommand() tea.Cmd {
	return func() tea.Msg {
		for _, filePath := range m.pendingDeletion {
			if err := os.Remove(filePath); err != nil {
				return DeletionCompleteMsg{
					FilePath: filePath,
					Success:  false,
					Error:    err,
				}
			}
		}
		return DeletionCompleteMsg{Success: true}
	}
}

func (m *DuplicatesModel) handleDeletionComplete(msg DeletionCompleteMsg) {
	if msg.Success && msg.FilePath == "" {
		var groupsToRemove []int

		for groupIndex := range m.groups {
			group := &m.groups[groupIndex]

			var remainingFiles []string
			var remainingSizes []int64
			var remainingSelected []bool

			for fileIndex, file := range group.Files {
				deleted := false
				for _, deletedFile := range m.pendingDeletion {
					if file == deletedFile {
						deleted = true
						break
					}
				}
				if !deleted {
					remainingFiles = append(remainingFiles, file)
					if fileIndex < len(group.Sizes) {
						remainingSizes = append(remainingSizes, group.Sizes[fileIndex])
					}
					remainingSelected = append(remainingSelected, group.Selected[fileIndex])
				}
			}

			group.Files = remainingFiles
			group.Sizes = remainingSizes
			group.Selected = remainingSelected

			// A group with one survivor has no duplicates left
			if len(group.Files) <= 1 {
				groupsToRemove = append(groupsToRemove, groupIndex)
			}
		}

		// Remove resolved groups in reverse order to keep indices valid
		for i := len(groupsToRemove) - 1; i >= 0; i-- {
			groupIndex := groupsToRemove[i]
			m.groups = append(m.groups[:groupIndex], m.groups[groupIndex+1:]...)
			if m.currentGroup >= groupIndex && m.currentGroup > 0 {
				m.currentGroup--
			}
		}

		if len(m.groups) == 0 {
			m.quitting = true
		} else {
			if m.currentGroup >= len(m.groups) {
				m.currentGroup = len(m.groups) - 1
			}
			if m.currentFile >= len(m.groups[m.currentGroup].Files) {
				m.currentFile = len(m.groups[m.currentGroup].Files) - 1
				if m.currentFile < 0 {
					m.currentFile = 0
				}
			}
		}
	}

	m.pendingDeletion = nil
}

// View implements tea.Model
func (m DuplicatesModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if len(m.groups) == 0 {
		return m.renderNoGroups()
	}

	if m.confirmingDeletion {
		return m.renderConfirmationDialog()
	}

	return m.renderMainView()
}

func (m DuplicatesModel) renderNoGroups() string {
	style := SuccessStyle.MarginTop(2).MarginLeft(2)
	return style.Render("✅ All duplicates have been processed!\n\nPress 'q' to quit.")
}

func (m DuplicatesModel) renderConfirmationDialog() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("⚠️  Confirm Deletion"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("Are you sure you want to delete %d image(s)?\n\n", len(m.pendingDeletion)))

	for _, file := range m.pendingDeletion {
		content.WriteString(fmt.Sprintf("  • %s\n", file))
	}

	content.WriteString("\n")
	content.WriteString(ErrorStyle.Render("This action cannot be undone!"))
	content.WriteString("\n\n")
	content.WriteString("Press 'y' to confirm, 'n' to cancel")

	return content.String()
}

func (m DuplicatesModel) renderMainView() string {
	var content strings.Builder

	header := fmt.Sprintf("PixPress - Duplicate Image Manager (Group %d of %d)",
		m.currentGroup+1, len(m.groups))
	content.WriteString(HeaderStyle.Render(header))
	content.WriteString("\n\n")

	group := m.groups[m.currentGroup]
	groupInfo := fmt.Sprintf("Perceptual hash: %s (%d images)", group.Hash, len(group.Files))
	content.WriteString(InfoStyle.Render(groupInfo))
	content.WriteString("\n\n")

	content.WriteString(m.renderFileList(group))
	content.WriteString("\n")

	if m.showHelp {
		content.WriteString(m.renderHelp())
	} else {
		content.WriteString("Press 'h' for help")
	}

	return content.String()
}

func (m DuplicatesModel) renderFileList(group DuplicateGroup) string {
	var content strings.Builder

	optimizedPaths := optimizePaths(group.Files)

	for i, file := range group.Files {
		var line strings.Builder

		if group.Selected[i] {
			line.WriteString("[✓] ")
		} else {
			line.WriteString("[ ] ")
		}

		fileName := filepath.Base(file)
		if i < len(group.Sizes) {
			fileName = fmt.Sprintf("%s (%s)", fileName, utils.FormatSize(group.Sizes[i]))
		}

		if i == m.currentFile {
			if group.Selected[i] {
				line.WriteString(SuccessStyle.Reverse(true).Render(fileName))
			} else {
				line.WriteString(lipgloss.NewStyle().Reverse(true).Render(fileName))
			}
		} else {
			if group.Selected[i] {
				line.WriteString(SuccessStyle.Render(fileName))
			} else {
				line.WriteString(fileName)
			}
		}

		line.WriteString(fmt.Sprintf("  %s", optimizedPaths[i]))
		content.WriteString(line.String())
		content.WriteString("\n")
	}

	return content.String()
}

// optimizePaths strips the common path prefix so only the meaningful
// differences show, keeping one directory of context.
func optimizePaths(paths []string) []string {
	if len(paths) <= 1 {
		return paths
	}

	pathComponents := make([][]string, len(paths))
	for i, path := range paths {
		pathComponents[i] = strings.Split(filepath.Clean(path), string(filepath.Separator))
	}

	commonPrefixLength := 0
	if len(pathComponents[0]) > 0 {
		maxLength := len(pathComponents[0])
		for _, components := range pathComponents[1:] {
			if len(components) < maxLength {
				maxLength = len(components)
			}
		}

		for i := 0; i < maxLength; i++ {
			first := pathComponents[0][i]
			allMatch := true
			for j := 1; j < len(pathComponents); j++ {
				if pathComponents[j][i] != first {
					allMatch = false
					break
				}
			}
			if allMatch {
				commonPrefixLength = i + 1
			} else {
				break
			}
		}
	}

	result := make([]string, len(paths))
	for i, components := range pathComponents {
		startIndex := commonPrefixLength
		if startIndex > 0 && len(components) > startIndex {
			startIndex = commonPrefixLength - 1 // keep one level of context
		}
		if startIndex < 0 {
			startIndex = 0
		}

		if startIndex < len(components) {
			result[i] = filepath.Join(components[startIndex:]...)
			if startIndex > 0 {
				result[i] = "..." + string(filepath.Separator) + result[i]
			}
		} else {
			result[i] = paths[i]
		}
	}

	return result
}

func (m DuplicatesModel) renderHelp() string {
	help := []string{
		"",
		"Navigation:",
		"  ↑/↓ or j/k   Navigate images in current group",
		"  ←/→ or p/n   Previous/Next duplicate group",
		"",
		"Selection:",
		"  Space        Toggle image selection",
		"  a            Select all copies except the first",
		"  c            Clear all selections in group",
		"",
		"Actions:",
		"  Enter        Delete all selected images from all groups (with confirmation)",
		"  s            Skip current group",
		"  h/?          Toggle this help",
		"  q            Quit",
		"",
	}

	return strings.Join(help, "\n")
}
