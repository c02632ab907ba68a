package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/letterpress/internal/adapters/watcher" //nolint:depguard // default debounce window
	"go.trai.ch/letterpress/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [target]",
		Short: "Re-run tasks when watched files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")

			return c.app.Watch(cmd.Context(), name, app.WatchOptions{
				ConfigPath: c.configPath,
				OutputMode: c.outputMode,
				Debounce:   debounce,
			})
		},
	}
	cmd.Flags().Duration("debounce", watcher.DefaultDebounceWindow, "Quiet period before changes trigger a run")
	return cmd
}
