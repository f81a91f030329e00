package main

import (
	"os"

	"github.com/zoobzio/snippet/cmd/snippet-demo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
