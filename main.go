package main

import (
	"github.com/elenaruiz/attribution-engine/cmd"
	// Blank imports register the subcommands with the root command via their init() functions.
	_ "github.com/elenaruiz/attribution-engine/cmd/cli"
	_ "github.com/elenaruiz/attribution-engine/cmd/server"
)

func main() {
	cmd.Execute()
}
