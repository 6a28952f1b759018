package main

import (
	"os"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
