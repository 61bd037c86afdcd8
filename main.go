package main

import (
	"os"

	"github.com/opennotesproject/notevault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
