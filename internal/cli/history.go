package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/store"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.requireHistory()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded yet")
				printNextStep("Record one with", "islandlink solve groups.txt")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), runsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of runs")
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the groups of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.requireHistory()
			if err != nil {
				return err
			}
			defer db.Close()

			run, err := db.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			printRun(w, run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func (c *CLI) requireHistory() (*store.DB, error) {
	db, err := c.openHistory(false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("run history is disabled (set [history] enabled = true)")
	}
	return db, nil
}

// runsTable renders a run listing.
func runsTable(runs []store.Run) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			strconv.Itoa(r.GroupCount),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Created", "Source", "Groups").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// printRun prints one stored run with its report lines.
func printRun(w io.Writer, run store.Run) {
	printKeyValue(w, "Run", run.ID)
	printKeyValue(w, "Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue(w, "Source", run.Source)
	fmt.Fprintln(w)
	for _, g := range run.Groups {
		fmt.Fprintf(w, "Island Group: %d Average %.2f\n", g.Index, g.Average)
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d islands · population %d · cable %.2f (was %.2f) · %d relinks",
			g.Sites, g.Population, g.CableAfter, g.CableBefore, g.Commits)))
	}
}
