package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okvalo/pixpress/intake"
	"github.com/okvalo/pixpress/logging"
	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
	"github.com/okvalo/pixpress/types"
	"github.com/okvalo/pixpress/ui"
)

type StudioCmd struct {
	Paths     []string `arg:"" optional:"" name:"paths" help:"Images or directories to load" type:"path"`
	DropDir   string   `help:"Watch a folder and add settled images automatically" type:"existingdir"`
	ExportDir string   `help:"Directory downloads are written to" default:"."`
	DB        string   `help:"State database path (default: user config dir)"`
	CacheDir  string   `help:"Preview cache directory (default: user cache dir)"`
}

func (cmd *StudioCmd) Run(appCtx *types.AppContext) error {
	version := types.DefaultVersion
	logLevel := "info"
	if appCtx != nil {
		version = appCtx.Version
		logLevel = appCtx.LogLevel
	}

	dbPath, err := resolveDBPath(cmd.DB)
	if err != nil {
		return err
	}
	cacheDir, err := resolveCacheDir(cmd.CacheDir)
	if err != nil {
		return err
	}

	// Log to a file so structured output never corrupts the terminal UI
	if err := logging.InitFile(filepath.Dir(dbPath), logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()
	log := logging.L()

	db, err := store.Open(dbPath, log)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	engine, err := press.NewEngine(cacheDir)
	if err != nil {
		return fmt.Errorf("failed to prepare cache directory: %w", err)
	}

	registry := store.NewRegistry(db, log)
	settings := store.NewSettingsStore(db, log)

	if len(cmd.Paths) > 0 {
		files, err := intake.Collect(cmd.Paths)
		if err != nil {
			return fmt.Errorf("failed to collect images: %w", err)
		}
		registry.AddImages(files)
	}

	var watcher *intake.Watcher
	if cmd.DropDir != "" {
		watcher, err = intake.NewWatcher(cmd.DropDir, 0, log)
		if err != nil {
			return fmt.Errorf("failed to watch drop folder: %w", err)
		}
		defer watcher.Close()
	}

	model := ui.NewStudioModel(registry, settings, engine, watcher, cmd.ExportDir, version)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("studio exited with error: %w", err)
	}
	return nil
}

func resolveDBPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config directory: %w", err)
	}
	dir := filepath.Join(base, "pixpress")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "pixpress.db"), nil
}

func resolveCacheDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate cache directory: %w", err)
	}
	return filepath.Join(base, "pixpress"), nil
}
