package main

import (
	"os"

	"machine-insights/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
