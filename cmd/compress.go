package cmd

import (
	"fmt"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/okvalo/pixpress/export"
	"github.com/okvalo/pixpress/intake"
	"github.com/okvalo/pixpress/press"
	"github.com/okvalo/pixpress/store"
	"github.com/okvalo/pixpress/types"
	"github.com/okvalo/pixpress/ui"
	"github.com/okvalo/pixpress/utils"
)

type CompressCmd struct {
	Paths   []string `arg:"" name:"paths" help:"Images or directories to compress" type:"path"`
	Workers int      `help:"Number of parallel workers" default:"0"`

	Quality   float64 `help:"Output quality (0.01-1.0)" default:"0.8"`
	Format    string  `help:"Output format" default:"jpeg" enum:"jpeg,png,webp"`
	MaxWidth  int     `help:"Maximum output width" default:"1920"`
	MaxHeight int     `help:"Maximum output height" default:"1080"`
	NoResize  bool    `help:"Keep original dimensions"`
	Sharpen   float64 `help:"Sharpening amount (0 disables)" default:"0"`

	OutputDir string `help:"Directory compressed files are written to" default:"."`
	Zip       bool   `help:"Bundle results into a zip archive instead of loose files"`
	CacheDir  string `help:"Working directory for intermediate files (default: user cache dir)"`
}

func (cmd *CompressCmd) Run(appCtx *types.AppContext) error {
	version := types.DefaultVersion
	if appCtx != nil {
		version = appCtx.Version
	}

	files, err := intake.Collect(cmd.Paths)
	if err != nil {
		return fmt.Errorf("failed to collect images: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("🎯 No images to compress.")
		return nil
	}

	cacheDir, err := resolveCacheDir(cmd.CacheDir)
	if err != nil {
		return err
	}
	engine, err := press.NewEngine(cacheDir)
	if err != nil {
		return fmt.Errorf("failed to prepare cache directory: %w", err)
	}

	settings := cmd.settings()

	// Clamp to one worker when sources live on a network drive: parallel
	// reads over the network thrash instead of speeding things up
	workers := cmd.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		for _, file := range files {
			if utils.IsNetworkPath(file) {
				workers = 1
				fmt.Printf("⚠️  Network drive detected, using 1 worker\n")
				break
			}
		}
	}

	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("PixPress %s", version)))
	fmt.Printf("Compressing %d images with %d workers (quality %.2f, format %s)\n",
		len(files), workers, settings.Quality, settings.Format)

	registry := store.NewRegistry(nil, nil)
	records := registry.AddImages(files)

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("compressing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, rec := range records {
		id := rec.ID
		g.Go(func() error {
			// Failures are recorded per image, not fatal to the batch
			_ = registry.Compress(id, engine, settings)
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	return cmd.writeResults(registry.Records())
}

func (cmd *CompressCmd) settings() press.Settings {
	s := press.DefaultSettings()
	s.Quality = cmd.Quality
	s.Format = press.Format(cmd.Format)
	s.MaxWidth = cmd.MaxWidth
	s.MaxHeight = cmd.MaxHeight
	s.ResizeEnabled = !cmd.NoResize
	if cmd.Sharpen > 0 {
		s.ApplySharpening = true
		s.SharpeningAmount = cmd.Sharpen
	}
	return s.Clamp()
}

func (cmd *CompressCmd) writeResults(records []*store.Record) error {
	var done, failed int
	var totalIn, totalOut int64
	for _, rec := range records {
		switch rec.Status {
		case store.StatusCompressed:
			done++
			totalIn += rec.OriginalSize
			totalOut += rec.CommittedSize
		case store.StatusError:
			failed++
			fmt.Printf("%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ %s: %s", rec.Name, rec.Error)))
		}
	}

	if done > 0 {
		if cmd.Zip {
			path := cmd.OutputDir + "/compressed_images.zip"
			n, err := export.WriteZip(records, path)
			if err != nil {
				return fmt.Errorf("failed to write archive: %w", err)
			}
			fmt.Printf("📦 Wrote %d images to %s\n", n, path)
		} else {
			if _, err := export.SaveAll(records, cmd.OutputDir); err != nil {
				return fmt.Errorf("failed to write output files: %w", err)
			}
		}
	}

	fmt.Printf("\n%s\n", ui.HeaderStyle.Render("📊 Compression Summary"))
	fmt.Printf("   Compressed: %d images\n", done)
	fmt.Printf("   Failed: %d images\n", failed)
	if done > 0 && totalIn > 0 {
		fmt.Printf("   Size: %s → %s (%s, saved %s)\n",
			utils.FormatSize(totalIn),
			utils.FormatSize(totalOut),
			utils.FormatRatio(press.Ratio(totalIn, totalOut)),
			utils.FormatSavings(totalIn, totalOut))
	}
	if failed == 0 {
		fmt.Printf("\n%s\n", ui.SuccessStyle.Render("🎉 Compression complete!"))
	}
	return nil
}
