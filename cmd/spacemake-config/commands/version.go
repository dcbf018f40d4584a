package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/cmd"
	"github.com/J-81/spacemake/internal/configstore"
)

func init() {
	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("spacemake-config version {{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of spacemake-config and the digest of its built-in defaults.`,
	Run: func(c *cobra.Command, _ []string) {
		out := c.OutOrStdout()
		fmt.Fprintf(out, "spacemake-config version %s\n", cmd.Version)
		fmt.Fprintf(out, "  commit:    %s\n", cmd.Commit)
		fmt.Fprintf(out, "  built:     %s\n", cmd.Date)
		fmt.Fprintf(out, "  go:        %s\n", runtime.Version())
		if snap, err := configstore.LoadDefaults(); err != nil {
			fmt.Fprintf(out, "  defaults:  invalid (%v)\n", err)
		} else {
			fmt.Fprintf(out, "  defaults:  %s\n", snap.Digest())
		}
	},
}
