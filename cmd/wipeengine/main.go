// Command wipeengine is the minimal CLI front-end for the wipe engine:
// it picks a target, a method, a verify flag, and invokes the engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "wipeengine"
	version = "0.1.0"

	exitSuccess        = 0
	exitEngineFailure  = 1
	exitSafetyRejected = 2
	exitInvalidArgs    = 3
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     appName,
	Short:   "Secure data erasure engine",
	Long:    "wipeengine overwrites a file, directory, or block device and verifies the result.",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(wipeCmd, drivesCmd, classifyCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFromError(err))
	}
}
