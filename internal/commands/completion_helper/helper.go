package completion_helper

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/urfave/cli/v3"
)

// DefaultFlagComplete prints all flags of the current command to facilitate shell completion.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	printFlags(os.Stdout, cmd)
}

// CatalogComplete prints the flags plus every model, technique and format id,
// so values for --model, --technique and --format complete too.
func CatalogComplete(reg *catalog.Registry) cli.ShellCompleteFunc {
	return func(_ context.Context, cmd *cli.Command) {
		printFlags(os.Stdout, cmd)
		printIDs(os.Stdout, reg)
	}
}

func printFlags(w io.Writer, cmd *cli.Command) {
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(w, "-"+name)
			} else {
				_, _ = fmt.Fprintln(w, "--"+name)
			}
		}
	}
}

func printIDs(w io.Writer, reg *catalog.Registry) {
	for _, m := range reg.Models() {
		_, _ = fmt.Fprintln(w, m.ID)
	}
	for _, tq := range reg.Techniques() {
		_, _ = fmt.Fprintln(w, tq.ID)
	}
	for _, f := range reg.Formats() {
		_, _ = fmt.Fprintln(w, f.ID)
	}
}
