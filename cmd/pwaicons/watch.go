package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/aellingwood/pwaicons/internal/build"
	"github.com/aellingwood/pwaicons/internal/config"
	"github.com/aellingwood/pwaicons/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate icons when the source or config changes",
	Long:  "Watch runs generate once, then again whenever the source image or the config file changes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := build.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}
		verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
		out := cmd.OutOrStdout()

		newBuilder := func() (*build.Builder, string, error) {
			cfg, configPath, err := loadWithOverrides(cmd)
			if err != nil {
				return nil, "", err
			}
			b := build.NewBuilder(cfg, build.BuildOptions{
				ProjectRoot: root,
				Mode:        mode,
				Verbose:     verbose,
				Out:         out,
			})
			return b, configPath, nil
		}

		builder, configPath, err := newBuilder()
		if err != nil {
			return err
		}
		if _, err := builder.Build(cmd.Context()); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}
		source, err := builder.SourcePath()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		w := watch.New([]string{source, config.Resolve(root, configPath)}, 100*time.Millisecond, func() {
			log.Println("Change detected, regenerating...")
			// The config is re-read so edits to it take effect.
			b, _, err := newBuilder()
			if err != nil {
				log.Printf("Regenerate failed: %v", err)
				return
			}
			result, err := b.Build(ctx)
			if err != nil {
				log.Printf("Regenerate failed: %v", err)
				return
			}
			log.Printf("Regenerated %d files in %s", len(result.Files), result.Duration.Round(time.Millisecond))
		})

		errCh := make(chan error, 1)
		go func() { errCh <- w.Start() }()
		fmt.Fprintf(out, "\nWatching %s and %s (Ctrl+C to stop)\n", filepath.Base(source), filepath.Base(configPath))

		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nShutting down...")
			w.Stop()
			return <-errCh
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	watchCmd.Flags().StringP("mode", "m", string(build.ModeAuto), "auto, convert, create or svg")
	addGenerateFlags(watchCmd)

	rootCmd.AddCommand(watchCmd)
}
