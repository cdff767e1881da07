package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aellingwood/pwaicons/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pwaicons",
	Short: "Generate PWA icons and favicons",
	Long: "pwaicons turns a source image into the icon set a progressive web app needs, " +
		"or draws a badge icon when no source is available.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads --config. A missing file at the default path means the
// built-in defaults; a missing file the user named is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	flag := cmd.Root().PersistentFlags().Lookup("config")
	configPath := flag.Value.String()
	cfg, err := config.LoadOrDefault(configPath, flag.Changed)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

func projectRoot() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining project root: %w", err)
	}
	return root, nil
}
