package main

import (
	"github.com/alecthomas/kong"
	"github.com/arnavsurve/smokeshot/cmd/cli"
)

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("smokeshot"),
		kong.Description("Verify that a web application renders its landing page in a real browser and capture screenshot evidence."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
