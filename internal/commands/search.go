package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search plans and tasks by name, note or review",
	Long: `Search plans and tasks with ranked matching:
- Exact name match (highest priority)
- Name prefix
- Name suffix
- Contained in name, note or review (lowest priority)

Search is case insensitive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		foundPlans, err := store.SearchPlans(query, limit)
		if err != nil {
			return fmt.Errorf("error searching plans: %w", err)
		}
		foundTasks, err := store.SearchTasks(query, limit)
		if err != nil {
			return fmt.Errorf("error searching tasks: %w", err)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderSearchJSON(cmd.OutOrStdout(), query, foundPlans, foundTasks)
		}
		renderSearchTable(cmd.OutOrStdout(), query, foundPlans, foundTasks, now())
		return nil
	},
}

// renderSearchJSON outputs search results as JSON
func renderSearchJSON(w io.Writer, query string, plans []models.Plan, tasks []models.Task) error {
	type searchResult struct {
		Query string        `json:"query"`
		Count int           `json:"count"`
		Plans []models.Plan `json:"plans"`
		Tasks []models.Task `json:"tasks"`
	}

	result := searchResult{
		Query: query,
		Count: len(plans) + len(tasks),
		Plans: plans,
		Tasks: tasks,
	}
	if result.Plans == nil {
		result.Plans = []models.Plan{}
	}
	if result.Tasks == nil {
		result.Tasks = []models.Task{}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// renderSearchTable outputs search results grouped by kind
func renderSearchTable(w io.Writer, query string, plans []models.Plan, tasks []models.Task, current time.Time) {
	fmt.Fprintf(w, "Search results for '%s' (%d found):\n", query, len(plans)+len(tasks))
	if len(plans) == 0 && len(tasks) == 0 {
		fmt.Fprintln(w, "Nothing found matching your search.")
		return
	}

	if len(plans) > 0 {
		fmt.Fprintf(w, "\nPlans (%d)\n", len(plans))
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, p := range plans {
			fmt.Fprintln(w, formatPlanLine(p))
		}
	}
	if len(tasks) > 0 {
		fmt.Fprintf(w, "\nTasks (%d)\n", len(tasks))
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, t := range tasks {
			fmt.Fprintln(w, formatTaskLine(t, current))
		}
	}
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 20, "Maximum results per kind (0 for all)")
	searchCmd.Flags().Bool("json", false, "JSON output")
}
