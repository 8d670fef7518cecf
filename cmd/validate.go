package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mltutor/internal/knowledge"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dataset]",
	Short: "Validate a knowledge dataset",
	Long: "Checks every chunk against the dataset schema (required fields,\n" +
		"assessment shape, rubric) and verifies subtopic uniqueness.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "data/expert_knowledge.json"
		if len(args) > 0 {
			path = args[0]
		}

		base, err := knowledge.Load(path)
		if err != nil {
			return fmt.Errorf("dataset invalid: %w", err)
		}

		for _, c := range base.Chunks() {
			fmt.Printf("ok  %-30s  %-12s  rubric levels: %d\n", c.Subtopic, c.Difficulty, len(c.Rubric))
		}
		fmt.Printf("\n%s: %d chunks, all valid\n", path, base.Len())
		return nil
	},
}
