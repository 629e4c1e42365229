package main

import (
	"os"

	"github.com/dl-alexandre/gxlib/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
