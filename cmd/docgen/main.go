// Command docgen generates CLI reference documentation from the taskdeck
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskdeck/internal/commands"
	"github.com/hay-kot/taskdeck/internal/tracker"
)

func main() {
	flags := &commands.Flags{}
	app := &tracker.App{}

	root := &cli.Command{
		Name:      "taskdeck",
		Usage:     "Track tasks on a remote task server",
		UsageText: "taskdeck [global options] command [command options]",
		Description: `Taskdeck is a terminal client for a remote task store. Every change is sent to
the server first; the local view only ever shows what the server confirmed.

Run 'taskdeck' with no arguments to open the interactive board.
Run 'taskdeck login' first if the server requires an account.`,
		Flags: commands.GlobalFlags(flags),
	}
	commands.RegisterAll(root, flags, app)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", filepath.Dir(outPath), err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
