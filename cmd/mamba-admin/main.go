package main

import (
	"os"

	"mamba-admin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
