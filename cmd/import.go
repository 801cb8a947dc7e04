package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/assignment"
	"github.com/studydesk/prio/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import assignments from a YAML or JSON file",
	Long: `Import assignments from a YAML or JSON file ("-" reads stdin).

The file is either a list of assignments or a mapping with an "assignments"
key. Existing assignments with the same id are updated; their status is kept
unless the file sets one.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader
	if args[0] == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	list, err := assignment.Decode(r)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Warnf("No assignments found.")
		return nil
	}

	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.svc.Import(ctx, a.viewer, list, time.Now()); err != nil {
		return err
	}

	ui.Okf("Imported %d assignment(s)", len(list))
	ui.Tip("see them ranked with", "prio tasks")
	return nil
}
