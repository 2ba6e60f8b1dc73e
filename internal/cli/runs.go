package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"sheetlens/internal/report"
	"sheetlens/internal/store"
)

var (
	runsLimit int
	runsJSON  string
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect analyses stored in the run database",
	Long: `Runs lists, shows, and deletes analyses persisted with --db.

Example:
  sheetlens runs list --db runs.db
  sheetlens runs show 6a9c... --db runs.db --json report.json
  sheetlens runs delete 6a9c... --db runs.db`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openRunStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		runs, err := st.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No stored runs.")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Run", "File", "Provider", "Created"})
		for _, r := range runs {
			tw.AppendRow(table.Row{r.RunID, r.FileName, r.Provider, r.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		tw.Render()
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openRunStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		result, err := st.GetRun(args[0])
		if err != nil {
			return err
		}

		renderer := report.NewRenderer(nil)
		if runsJSON != "" {
			if err := renderer.RenderJSON(result, runsJSON); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", runsJSON)
			return nil
		}
		renderer.RenderSummary(result)
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openRunStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.DeleteRun(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Deleted run %s\n", args[0])
		return nil
	},
}

// openRunStore resolves the database path from the --db flag or the config
// file. Listing commands never create a database implicitly.
func openRunStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = loadConfig().Store.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no run database configured (use --db or set store.path)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("run database %s not found", path)
	}
	return store.Open(path)
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	runsCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database holding stored runs")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
	runsShowCmd.Flags().StringVar(&runsJSON, "json", "", "write the stored result to a JSON file instead of printing")
}
