package main

import (
	"os"

	"arcompras/comprasworker/cmd/comprasctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
