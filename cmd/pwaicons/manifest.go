package main

import (
	"fmt"

	"github.com/aellingwood/pwaicons/internal/build"
	"github.com/aellingwood/pwaicons/internal/report"
	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write manifest.webmanifest for the existing icons",
	Long:  "Manifest lists the icon files already in the icons directory in a web app manifest.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
			cfg.IconsDir = dir
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}

		path, err := build.NewBuilder(cfg, build.BuildOptions{ProjectRoot: root}).WriteManifest()
		if err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		report.New(cmd.OutOrStdout(), root).Saved(path)
		return nil
	},
}

func init() {
	manifestCmd.Flags().StringP("output-dir", "o", "", "icons directory to scan (overrides config)")

	rootCmd.AddCommand(manifestCmd)
}
