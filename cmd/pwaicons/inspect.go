package main

import (
	"fmt"
	"os"

	"github.com/aellingwood/pwaicons/internal/ico"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.ico>",
	Short: "List the images inside an .ico file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		entries, err := ico.DecodeDir(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d images\n", args[0], len(entries))
		for i, e := range entries {
			fmt.Fprintf(out, "  %d  %dx%d  %d-bit  %d bytes at offset %d\n",
				i, e.Width, e.Height, e.BitCount, e.Size, e.Offset)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
