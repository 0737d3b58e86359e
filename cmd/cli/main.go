package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/scolli03/rwmarket/config"
	"github.com/scolli03/rwmarket/internal/app"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rwmarket",
	Short: "Torn ranked war market lister and cache quoter",
	Long: `A CLI for listing ranked war weapons and armor on the Torn item market
and for quoting buy prices of ranked war reward caches.

Output goes to stdout in the chosen export format. Logs go to stderr.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

// persistentPreRun loads configuration and the logger before each command
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = app.NewLogger(cfg.Logging, "rwmarket-cli")
	return nil
}

// newApp wires the application for commands that talk to upstream APIs
func newApp(ctx context.Context, prefs bool) (*app.App, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, app.Options{SkipPreferences: !prefs})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
