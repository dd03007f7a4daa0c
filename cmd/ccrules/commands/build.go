package commands

import (
	"github.com/spf13/cobra"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the named units and everything they depend on",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			cwd, _ := cmd.Flags().GetString("directory")
			profileName, _ := cmd.Flags().GetString("profile")
			jobs, _ := cmd.Flags().GetInt("jobs")

			profile, err := domain.ParseProfile(profileName)
			if err != nil {
				return err
			}
			return c.app.Build(cmd.Context(), cwd, profile, args, jobs)
		},
	}
	cmd.Flags().StringP("profile", "p", string(domain.ProfileDbg), "Build profile (dbg, opt or cover)")
	cmd.Flags().IntP("jobs", "j", 0, "Number of parallel jobs (0 means one per CPU)")
	return cmd
}
