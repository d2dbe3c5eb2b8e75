package main

import (
	"os"

	"github.com/dshills/prism-ci/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
