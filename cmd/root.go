// Package cmd wires the mltutor CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mltutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mltutor",
	Short: "Adaptive machine learning tutor",
	Long: "mltutor serves an adaptive ML tutoring engine: it profiles the learner,\n" +
		"tracks per-subtopic mastery, and explains the weakest subtopic each turn.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite event database (overrides MLTUTOR_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the event database path: --db flag first, then
// MLTUTOR_DB, then the default XDG location.
func resolveDBPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	return store.DefaultDBPath()
}
