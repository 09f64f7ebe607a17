package main

import (
	"os"

	"condasetup/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
