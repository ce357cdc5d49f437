package main

import (
	"os"

	"github.com/jwulff/chartnote/internal/cli"
	"github.com/jwulff/chartnote/internal/output"
)

func main() {
	if err := cli.NewRootCmd(&cli.Dependencies{}).Execute(); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}
