// Package cmd wires the itermap detector up to a cobra command tree, the
// same shape pkg/cmd gives the verification pipeline's own CLI.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger = log.New()

var rootCmd = &cobra.Command{
	Use:   "itermap",
	Short: "Detect and normalize affine iteration maps over loop indices",
	Long: `itermap analyzes a set of index expressions over a declared set of
bounded integer variables, and either reports the affine iteration map those
indices describe or explains why they do not describe one.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			logger.SetLevel(log.DebugLevel)
		} else {
			logger.SetLevel(log.WarnLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("bijective", defaultBijective, "require the detected map to cover its input space exactly once")
	rootCmd.PersistentFlags().Bool("verbose", defaultVerbose, "enable debug logging")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(simplifyCmd)
	rootCmd.AddCommand(divideCmd)
	rootCmd.AddCommand(inverseCmd)
}

// Execute runs the itermap command tree, exiting the process with status 1
// on any command error — cobra's own convention, followed the same way
// pkg/cmd/root.go follows it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
