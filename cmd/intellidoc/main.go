package main

import (
	"os"

	"github.com/biodoia/intellidoc/cmd/intellidoc/commands"
)

var version = "0.1.0"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
