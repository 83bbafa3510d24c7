package main

import (
	"os"

	"github.com/Yu62ballena/iroAwase/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
