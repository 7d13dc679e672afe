package main

import (
	"os"

	"github.com/mitchellh/cli"
)

func main() {
	ui := &cli.ColoredUi{
		Ui: &cli.BasicUi{
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
			Reader:      os.Stdin,
		},
		OutputColor: cli.UiColorNone,
		ErrorColor:  cli.UiColorRed,
	}

	os.Exit(Run(os.Args[1:], ui))
}
