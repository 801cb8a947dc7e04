package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/version"
)

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print prio version",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
}

func runVersion(_ *cobra.Command, _ []string) error {
	switch {
	case versionJSON:
		return json.NewEncoder(os.Stdout).Encode(version.Info())
	case versionShort:
		fmt.Println(version.Short())
	default:
		fmt.Printf("prio %s\n", version.Full())
	}
	return nil
}
