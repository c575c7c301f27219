package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version := env.build.Version
			if version == "" {
				version = "dev"
			}
			fmt.Fprintf(env.out, "%s %s", appName, version)
			if env.build.Commit != "" && env.build.Commit != "none" {
				fmt.Fprintf(env.out, " (%s)", env.build.Commit)
			}
			fmt.Fprintln(env.out)
		},
	}
}
