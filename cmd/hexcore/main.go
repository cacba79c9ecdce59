// Command hexcore compiles hexagonal reactor core descriptions into solver
// input decks.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/hexcore/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
