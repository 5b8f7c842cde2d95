package main

import (
	"os"

	"github.com/abhisek/mandela/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
