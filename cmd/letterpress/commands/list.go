package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/letterpress/internal/app"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, aliases and watch targets",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.app.List(app.ListOptions{
				ConfigPath: c.configPath,
				OutputMode: c.outputMode,
			})
		},
	}
}
