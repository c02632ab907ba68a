package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/letterpress/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [names...]",
		Short: "Run aliases and tasks in order",
		Long: `Run aliases and tasks in the order given. A name is an alias, a task
("kind:target") or a kind, which runs every target of that kind.
Without names the "default" alias runs. The first failing task stops the run.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args, app.RunOptions{
				ConfigPath: c.configPath,
				OutputMode: c.outputMode,
			})
		},
	}
}
