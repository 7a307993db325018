package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sigverify",
	Short: "Compare two signature scans using ORB local features",
	Long: `sigverify compares a test signature against a reference signature by
detecting ORB keypoints in both scans, matching their binary descriptors with
Lowe's ratio test and counting the unambiguous matches against a threshold.

Configuration is read from an optional YAML file (--config), a .env file in
the working directory and SIGVERIFY_* environment variables.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write structured debug logs to stderr")
}
