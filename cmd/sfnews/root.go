package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/pevans/sfnews/app"
	"github.com/pevans/sfnews/config"
	"github.com/pevans/sfnews/remote"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	offline bool
	noColor bool
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sfnews",
	Short: "Spaceflight News command line client",
	Long: `sfnews lists and searches articles from the Spaceflight News API.

It remembers where the last page ended, so each run of "sfnews list"
continues from there until the results run out or you pass --reload.

Example usage:
  sfnews list                  # Next page of the newest articles
  sfnews list --search NASA    # Next page of articles matching NASA
  sfnews list --reload -n 3    # First three pages, starting over
  sfnews show 29312            # Full article
  sfnews browse                # Interactive session on stdin`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/sfnews/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "act as if the network were unavailable")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig loads the configuration and sets up logging.
func initConfig() error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if noColor {
		color.NoColor = true
	}

	logger.Debug("configuration loaded",
		"base_url", cfg.API.BaseURL,
		"dsn", cfg.Storage.DSN,
		"debounce", cfg.Search.Debounce,
	)

	return nil
}

// openApp builds the application from the loaded configuration.
func openApp() (*app.App, error) {
	var opts []app.Option
	if offline {
		opts = append(opts, app.WithConnectivity(remote.Offline))
	}
	return app.New(cfg, logger, opts...)
}
