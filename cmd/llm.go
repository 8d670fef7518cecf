package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mltutor/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM request events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := store.Open(resolveDBPath(cmd))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.ListLLMEvents(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("-", 96))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "yes"
			if !e.Success {
				ok = "no"
			}
			model := e.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (explain, evaluate)")

	llmCmd.AddCommand(llmListCmd)
}
