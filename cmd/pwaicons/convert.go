package main

import (
	"github.com/aellingwood/pwaicons/internal/build"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the source image into icons and favicons",
	Long: "Convert center-crops the source image to a square and writes icon-{size}.png, " +
		"favicon.ico and favicon.png.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, build.ModeConvert)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Draw the badge icon",
	Long:  "Create draws a rounded badge with a short label at every icon size.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, build.ModeCreate)
	},
}

var svgCmd = &cobra.Command{
	Use:   "svg",
	Short: "Write vector badge icons",
	Long:  "Svg writes icon-{size}.svg files with the badge design.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, build.ModeSVG)
	},
}

func init() {
	for _, c := range []*cobra.Command{convertCmd, createCmd, svgCmd} {
		addGenerateFlags(c)
		rootCmd.AddCommand(c)
	}
}
