package main

import (
	"os"

	"vaquinha/cmd/vaquinha/commands"
)

func main() {
	os.Exit(commands.Execute())
}
