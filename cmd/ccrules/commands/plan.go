package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the final per-profile commands for every step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, _ := cmd.Flags().GetString("directory")
			profileName, _ := cmd.Flags().GetString("profile")

			profiles := domain.Profiles()
			if profileName != "" {
				p, err := domain.ParseProfile(profileName)
				if err != nil {
					return err
				}
				profiles = []domain.Profile{p}
			}

			plan, err := c.app.Plan(cwd)
			if err != nil {
				return err
			}
			if err := plan.RewriteAll(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for step := range plan.Graph.Walk() {
				for _, p := range profiles {
					fmt.Fprintf(out, "%s [%s]\n  %s\n", step.ID, p, step.Commands.Get(p))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("profile", "p", "", "Restrict output to one profile (dbg, opt or cover)")
	return cmd
}
