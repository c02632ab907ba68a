// Package commands implements the CLI commands for letterpress.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/letterpress/internal/app"
	"go.trai.ch/letterpress/internal/build"
	"go.trai.ch/letterpress/internal/core/domain"
)

// CLI represents the command line interface for letterpress.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	configPath string
	outputMode string
	jsonLogs   bool
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	Watch(ctx context.Context, name string, opts app.WatchOptions) error
	List(opts app.ListOptions) error
	Init(dir string, force bool) error
	ConfigureOutput(jsonLogs bool, outputMode string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "letterpress",
		Short:         "Build pipeline for email templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", domain.PipelineFileName, "Path to the pipeline file")
	flags.StringVarP(&c.outputMode, "output-mode", "o", "auto", "Output mode: auto, color, or plain")
	flags.BoolVar(&c.jsonLogs, "json", false, "Write logs as JSON")

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return c.app.ConfigureOutput(c.jsonLogs, c.outputMode)
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
