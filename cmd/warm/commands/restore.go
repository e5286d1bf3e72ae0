package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore every cache class, falling back to prior-day entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Restore(cmd.Context())
		},
	}
}
