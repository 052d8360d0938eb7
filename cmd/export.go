package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/okvalo/pixpress/export"
	"github.com/okvalo/pixpress/logging"
	"github.com/okvalo/pixpress/store"
	"github.com/okvalo/pixpress/types"
	"github.com/okvalo/pixpress/ui"
)

type ExportCmd struct {
	OutputDir string `help:"Directory downloads are written to" default:"."`
	Zip       bool   `help:"Bundle everything into a zip archive"`
	DB        string `help:"State database path (default: user config dir)"`
}

// Run exports every committed result persisted by the studio without
// opening the interactive UI.
func (cmd *ExportCmd) Run(appCtx *types.AppContext) error {
	dbPath, err := resolveDBPath(cmd.DB)
	if err != nil {
		return err
	}

	db, err := store.Open(dbPath, logging.L())
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	registry := store.NewRegistry(db, logging.L())
	records := registry.Records()
	if len(records) == 0 {
		fmt.Println("🎯 No images in the registry.")
		return nil
	}

	if cmd.Zip {
		path := filepath.Join(cmd.OutputDir, "compressed_images.zip")
		n, err := export.WriteZip(records, path)
		if err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
		if n == 0 {
			fmt.Println("🎯 Nothing compressed yet, archive is empty.")
			return nil
		}
		fmt.Printf("%s\n", ui.SuccessStyle.Render(fmt.Sprintf("📦 Wrote %d images to %s", n, path)))
		return nil
	}

	n, err := export.SaveAll(records, cmd.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if n == 0 {
		fmt.Println("🎯 Nothing compressed yet.")
		return nil
	}
	fmt.Printf("%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ Exported %d images to %s", n, cmd.OutputDir)))
	return nil
}
