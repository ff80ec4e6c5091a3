package main

import (
	"os"

	"github.com/jonesrussell/godigest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
