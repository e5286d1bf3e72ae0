package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print each class's exact cache key and restore-key chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans, err := c.app.Plan(cmd.Context())
			if err != nil {
				return err
			}
			for _, plan := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					plan.Class.Name,
					plan.ExactKey.String(),
					strings.Join(plan.RestoreKeys, ","))
			}
			return nil
		},
	}
}
