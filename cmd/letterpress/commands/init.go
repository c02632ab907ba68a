package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter pipeline file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return c.app.Init(filepath.Dir(c.configPath), force)
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing pipeline file")
	return cmd
}
