package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save every cache class under today's exact key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Save(cmd.Context())
		},
	}
}
