package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
	Long: `Show or change preferences.

Keys:
  work          Pomodoro length in minutes (3-45)
  relax         Relax length in minutes (1-5)
  review        Daily review reminder (on|off)
  review-time   Reminder time of day (HH:MM)

Examples:
  taskflow settings
  taskflow settings set work 25
  taskflow settings set review on
  taskflow settings edit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSettings(cmd.OutOrStdout())
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSettings(cmd.OutOrStdout())
	},
}

func showSettings(w io.Writer) error {
	current, err := preferences.Current()
	if err != nil {
		return err
	}
	renderSettings(w, current)
	return nil
}

func renderSettings(w io.Writer, s *models.Settings) {
	review := "off"
	if s.ReviewNotification {
		review = "on"
	}
	fmt.Fprintf(w, "⚙️  Settings\n")
	fmt.Fprintf(w, "  work          %d min\n", s.WorkMinutes)
	fmt.Fprintf(w, "  relax         %d min\n", s.RelaxMinutes)
	fmt.Fprintf(w, "  review        %s\n", review)
	fmt.Fprintf(w, "  review-time   %s\n", s.ReviewTime)
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one preference",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return settings.Keys, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		updated, err := preferences.Set(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Set %s to %s\n", strings.ToLower(args[0]), args[1])
		renderSettings(cmd.OutOrStdout(), updated)
		return nil
	},
}

var settingsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit preferences in a form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := preferences.Current()
		if err != nil {
			return err
		}
		patch, err := settingsForm(current)
		if err != nil {
			if errors.Is(err, errCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return err
		}
		updated, err := preferences.Update(patch)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Settings saved")
		renderSettings(cmd.OutOrStdout(), updated)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEditCmd)
}
