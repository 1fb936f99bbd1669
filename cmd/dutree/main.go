package main

import (
	"os"

	"github.com/nachoparker/dutree/cmd/dutree/commands"
)

func main() {
	os.Exit(commands.Execute())
}
