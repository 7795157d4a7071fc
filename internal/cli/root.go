package cli

import (
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

type rootEnv struct {
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config/config.yaml"`
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var defaults rootEnv
	if err := env.Parse(&defaults); err != nil {
		defaults.ConfigPath = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "trivia",
		Short:        "Solo trivia game engine with a websocket renderer and a terminal player",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", defaults.ConfigPath, "path to YAML config")
	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (overrides config and PORT)")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewPlayCmd(&configPath))
	return cmd
}
