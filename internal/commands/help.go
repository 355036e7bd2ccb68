package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:         "help [command]",
	Short:       "Show comprehensive help for taskflow",
	Long:        `Display detailed help for all taskflow commands and flags, or the usage of one command.`,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			target, _, err := rootCmd.Find(args)
			if err != nil || target == rootCmd {
				return fmt.Errorf("unknown help topic %q", strings.Join(args, " "))
			}
			return target.Help()
		}
		fmt.Fprint(cmd.OutOrStdout(), banner)
		fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(helpText))
		return nil
	},
}

const banner = `
████████╗ █████╗ ███████╗██╗  ██╗███████╗██╗      ██████╗ ██╗    ██╗
╚══██╔══╝██╔══██╗██╔════╝██║ ██╔╝██╔════╝██║     ██╔═══██╗██║    ██║
   ██║   ███████║███████╗█████╔╝ █████╗  ██║     ██║   ██║██║ █╗ ██║
   ██║   ██╔══██║╚════██║██╔═██╗ ██╔══╝  ██║     ██║   ██║██║███╗██║
   ██║   ██║  ██║███████║██║  ██╗██║     ███████╗╚██████╔╝╚███╔███╔╝
   ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝     ╚══════╝ ╚═════╝  ╚══╝╚══╝
`

const helpText = `
# taskflow - plans, daily tasks and pomodoros

Every command first creates today's tasks from your active plans (once per day).

## Today

| Command | Description |
|---|---|
| ` + "`today`" + ` | Board of today's tasks by quadrant |
| ` + "`today --ui`" + ` | Interactive board: ` + "`d`" + ` done, ` + "`p`" + ` start a pomodoro |

## Plans

| Command | Description |
|---|---|
| ` + "`plan add <name>`" + ` | Create a plan (no name opens a form) |
| ` + "`plan ls [--all]`" + ` | Active plans, ` + "`--all`" + ` adds closed ones |
| ` + "`plan show <id>`" + ` | Plan details and its daily tasks |
| ` + "`plan finish/abandon/reopen/toggle <id>`" + ` | Change the status |
| ` + "`plan delay <id> [--until <date>]`" + ` | Mark delayed, optionally move the end |
| ` + "`plan note <id> <text> [--review]`" + ` | Set the note or the review |
| ` + "`plan rm <id>`" + ` | Delete the plan, its tasks stay |

Smart syntax: ` + "`+high`" + `, ` + "`!urgent`" + `, ` + "`start:tomorrow`" + `, ` + "`end:2weeks`" + `

    taskflow plan add "Ship v2 +high !urgent start:tomorrow end:2weeks"

## Tasks

| Command | Description |
|---|---|
| ` + "`task add <name>`" + ` | Create a task (` + "`on:<date>`" + `, ` + "`plan:<id>`" + `) |
| ` + "`task ls [--day <date>] [--plan <id>]`" + ` | Tasks of a day or a plan |
| ` + "`task show <id>`" + ` | Task details |
| ` + "`task done/undone <id>`" + ` | Tick off or reopen |
| ` + "`task note <id> <text> [--review]`" + ` | Set the note or the review |
| ` + "`task rm <id>`" + ` | Delete the task |

## Pomodoro

| Command | Description |
|---|---|
| ` + "`pomo start [task-id] [-m <min>] [--no-ui]`" + ` | Start a session |
| ` + "`pomo resume`" + ` | Reopen the timer of the running session |
| ` + "`pomo finish`" + ` | Complete the running session now |
| ` + "`pomo abandon`" + ` | Abandon the running session |
| ` + "`pomo status`" + ` | Show the running session |
| ` + "`pomo history [-n <count>]`" + ` | Recent sessions |

Timer keys: ` + "`space`" + ` pause, ` + "`f`" + ` finish, ` + "`x`" + ` abandon, ` + "`r`" + ` relax, ` + "`s`" + ` skip, ` + "`t`" + ` switch task, ` + "`q`" + ` quit (a running session keeps running, resume a paused one first)

## Other

| Command | Description |
|---|---|
| ` + "`stats [-r today/week/month/total] [--json]`" + ` | Charts of sessions, tasks and plans |
| ` + "`search <query> [--json]`" + ` | Ranked search across plans and tasks |
| ` + "`settings [show/set/edit]`" + ` | Work and relax length, review reminder |
| ` + "`version`" + ` | Version information |

Dates: ` + "`today`" + `, ` + "`tomorrow`" + `, ` + "`dd/mm/yyyy`" + `, ` + "`3 days`" + `, ` + "`2 weeks`" + `

Global flags: ` + "`--db <path>`" + ` (or ` + "`TASKFLOW_DB`" + `), ` + "`--verbose`" + ` (or ` + "`TASKFLOW_DEBUG=1`" + `)
`

// renderMarkdown renders md for the terminal, falling back to the raw text
func renderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
