package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SkeneZr/cc-rules/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ccrules version %s\n", build.Version)
		},
	}
}
