package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okvalo/pixpress/intake"
	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/types"
	"github.com/okvalo/pixpress/ui"
	"github.com/okvalo/pixpress/utils"
)

type DuplicatesCmd struct {
	Directory string `arg:"" name:"directory" help:"Directory to scan for duplicate images" type:"existingdir" default:"."`
	Threshold int    `help:"Hamming distance threshold for similarity (0-64)" default:"10"`
	NoTUI     bool   `name:"no-tui" help:"Disable interactive TUI and just list duplicates"`
}

func (cmd *DuplicatesCmd) Run(appCtx *types.AppContext) error {
	version := types.DefaultVersion
	if appCtx != nil {
		version = appCtx.Version
	}
	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("PixPress %s", version)))
	fmt.Printf("Scanning %s for visually similar images...\n", cmd.Directory)

	files, err := intake.Collect([]string{cmd.Directory})
	if err != nil {
		return fmt.Errorf("failed to scan directory: %w", err)
	}

	groups, err := press.FindSimilarImages(files, cmd.Threshold)
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}

	if len(groups) == 0 {
		fmt.Printf("%s\n", ui.SuccessStyle.Render("✅ No duplicates found"))
		return nil
	}

	// If no-tui flag is set, just list the duplicates
	if cmd.NoTUI {
		fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("Found %d group(s) of similar images:", len(groups))))
		for _, group := range groups {
			fmt.Printf("\n🔸 %s (%d images):\n", group.Hash, len(group.Files))
			for i, file := range group.Files {
				fmt.Printf("  %s (%s)\n", file, utils.FormatSize(group.Sizes[i]))
			}
		}
		return nil
	}

	// Launch TUI for interactive duplicate management
	uiGroups := make([]ui.DuplicateGroup, len(groups))
	for i, group := range groups {
		uiGroups[i] = ui.DuplicateGroup{
			Hash:  group.Hash,
			Files: group.Files,
			Sizes: group.Sizes,
		}
	}
	model := ui.NewDuplicatesModel(uiGroups)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
