package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/materialize"
	"github.com/balkashynov/taskflow/internal/planner"
	"github.com/balkashynov/taskflow/internal/settings"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// skipStore marks commands that run without opening the database
const skipStore = "skip-store"

var (
	dbPath  string
	verbose bool

	// now is swapped in tests
	now = time.Now

	store       *db.Store
	plans       *planner.Service
	preferences *settings.Service
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Plans, daily tasks and a pomodoro timer",
	Long: `taskflow turns long-running plans into daily tasks and times your focus sessions.
Every command first creates today's tasks from your active plans, once per day.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: openStore,
}

// openStore opens the database and materializes today's tasks before any command runs
func openStore(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipStore] != "" {
		return nil
	}

	path := dbPath
	if path == "" {
		path = os.Getenv("TASKFLOW_DB")
	}
	if path == "" {
		var err error
		if path, err = db.DefaultPath(); err != nil {
			return err
		}
	}

	s, err := db.Open(path, db.WithVerbose(verbose || os.Getenv("TASKFLOW_DEBUG") == "1"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	store = s
	plans = planner.NewService(store).WithClock(now)
	preferences = settings.NewService(store)

	result, err := materialize.NewEngine(store).MaterializeToday(cmd.Context(), now())
	if err != nil {
		// Not fatal: the next command tries again
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create today's tasks: %v\n", err)
		return nil
	}
	if n := len(result.CreatedTasks); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "🌅 Created %d task(s) for today from your plans\n\n", n)
	}
	return nil
}

func closeStore() {
	if store != nil {
		store.Close()
		store = nil
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	defer closeStore()
	return rootCmd.ExecuteContext(context.Background())
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskflow %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default ~/.taskflow/taskflow.db, or $TASKFLOW_DB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements to stderr (or TASKFLOW_DEBUG=1)")

	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(pomoCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
