package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/cropdoc/cmd/cli/scan"
	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(scan.Group)
	rootCmd.AddCommand(scan.Scan)
	rootCmd.AddCommand(scan.History)
}

var rootCmd = &cobra.Command{
	Use:  "cropdoc-cli",
	Long: `Command line utilities for Cropdoc https://github.com/myrjola/cropdoc`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
