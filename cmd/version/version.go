package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/cmd/root"
)

// Populated at build time via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s (%s, built %s)\n", root.RootCmd.Name(), Version, Commit, Date)
		fmt.Printf("%s %s/%s\n", GoVersion, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	root.RootCmd.AddCommand(VersionCmd)
}
