package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/store/internal/config"
	"github.com/vango-dev/store/internal/errors"
	"github.com/vango-dev/store/pkg/vango"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┌┐┌┌─┐┌─┐  ┌─┐┌┬┐┌─┐┬─┐┌─┐
  ╚╗╔╝├─┤││││ ┬│ │  └─┐ │ │ │├┬┘├┤
   ╚╝ ┴ ┴┘└┘└─┘└─┘  └─┘ ┴ └─┘┴└─└─┘
`

// app carries what every command needs after config is loaded.
type app struct {
	configDir string
	cfg       *config.Config
	logger    *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vango-store",
		Short: "Global-state hooks for Vango components",
		Long: `vango-store exercises the Vango store hook factory.

A store is defined once and read from any component without a
context provider. This tool runs the reference counter scenario
and a load bench against the component runtime.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configDir, "config-dir", "C", ".", "Directory containing "+config.ConfigFileName)

	rootCmd.AddCommand(
		demoCmd(a),
		benchCmd(a),
		versionCmd(),
	)

	return rootCmd
}

// load reads configuration and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	vango.DebugMode = cfg.Debug
	return nil
}

// printBanner prints the ASCII art banner.
func printBanner(cmd *cobra.Command) {
	fmt.Fprint(cmd.OutOrStdout(), banner)
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fmt.Sprintf(format, args...))
}
