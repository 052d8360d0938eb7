package ui

// TUI message types for duplicate image management
type DeletionCompleteMsg struct {
	FilePath string
	Success  bool
	Error    error
}
