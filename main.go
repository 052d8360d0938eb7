package main

import (
	"github.com/alecthomas/kong"

	"github.com/okvalo/pixpress/cmd"
	"github.com/okvalo/pixpress/types"
)

var Version = "dev"

type CLI struct {
	Studio     cmd.StudioCmd     `cmd:"" default:"withargs" help:"Interactive compression studio with live previews"`
	Compress   cmd.CompressCmd   `cmd:"" help:"Compress images in one shot"`
	Export     cmd.ExportCmd     `cmd:"" help:"Export committed results from the studio registry"`
	Duplicates cmd.DuplicatesCmd `cmd:"" help:"Find visually similar images by perceptual hash"`

	LogLevel string `help:"Log level" default:"info" enum:"debug,info,warn,error"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pixpress"),
		kong.Description("Image compression with live before/after previews"),
	)
	err := ctx.Run(&types.AppContext{Version: Version, LogLevel: cli.LogLevel})
	ctx.FatalIfErrorf(err)
}
