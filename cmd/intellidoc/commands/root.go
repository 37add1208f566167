// Package commands implements the intellidoc CLI.
package commands

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/biodoia/intellidoc/pkg/config"
)

var (
	cfgPath      string
	strategyFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "intellidoc",
	Short: "Multi-model AI documentation generator",
	Long: `IntelliDoc generates code documentation by asking several AI model
providers concurrently and combining their answers with a collaboration
strategy (consensus, specialization, review or voting).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that never call providers don't need a valid config.
		switch cmd.Name() {
		case "version", "init", "config", "help", cobra.ShellCompRequestCmd:
			return nil
		}

		// Credentials commonly live in a local .env during development.
		_ = godotenv.Load()

		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if strategyFlag != "" {
			loaded.Strategy = strategyFlag
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		cfg = loaded

		setupLogging(cfg.Logging)
		return nil
	},
}

func setupLogging(lc config.LoggingConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// Execute runs the CLI.
func Execute(version string) error {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&strategyFlag, "strategy", "s", "", "collaboration strategy override (consensus|specialization|review|voting)")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		return err
	}
	return nil
}
