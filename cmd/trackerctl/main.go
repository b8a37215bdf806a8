package main

import (
	"os"

	"github.com/dixithak/FileInsights/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
