package main

import (
	"os"

	"github.com/topicmux/topicmux/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
