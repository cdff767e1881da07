package main

import (
	"fmt"

	"github.com/aellingwood/pwaicons/internal/build"
	"github.com/aellingwood/pwaicons/internal/config"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the icon set",
	Long: "Generate converts the source image when it exists and draws the badge icon otherwise. " +
		"When raster output is impossible, SVG icons are written instead.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := build.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		return runGenerate(cmd, mode)
	},
}

// addGenerateFlags registers the flags shared by every generating command.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "source image (overrides config)")
	cmd.Flags().StringP("output-dir", "o", "", "icons directory (overrides config)")
	cmd.Flags().String("public-dir", "", "directory for favicon.ico and favicon.png (overrides config)")
	cmd.Flags().String("text", "", "badge label (overrides config)")
	cmd.Flags().Bool("no-cache", false, "always re-encode the source")
	cmd.Flags().Bool("manifest", false, "also write manifest.webmanifest")
}

// loadWithOverrides loads the config and applies the generating flags.
func loadWithOverrides(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}

	source, _ := cmd.Flags().GetString("source")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	publicDir, _ := cmd.Flags().GetString("public-dir")
	text, _ := cmd.Flags().GetString("text")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	withManifest, _ := cmd.Flags().GetBool("manifest")

	cfg.WithOverrides(map[string]any{
		"source":    source,
		"outputDir": outputDir,
		"publicDir": publicDir,
		"text":      text,
		"noCache":   noCache,
		"manifest":  withManifest,
	})
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func runGenerate(cmd *cobra.Command, mode build.Mode) error {
	cfg, _, err := loadWithOverrides(cmd)
	if err != nil {
		return err
	}
	root, err := projectRoot()
	if err != nil {
		return err
	}
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	builder := build.NewBuilder(cfg, build.BuildOptions{
		ProjectRoot: root,
		Mode:        mode,
		Verbose:     verbose,
		Out:         cmd.OutOrStdout(),
	})
	if _, err := builder.Build(cmd.Context()); err != nil {
		return fmt.Errorf("generating icons: %w", err)
	}
	return nil
}

func init() {
	generateCmd.Flags().StringP("mode", "m", string(build.ModeAuto), "auto, convert, create or svg")
	addGenerateFlags(generateCmd)

	rootCmd.AddCommand(generateCmd)
}
