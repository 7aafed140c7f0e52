package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samsaffron/imgedit/internal/history"
	"github.com/samsaffron/imgedit/internal/ui"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent image runs",
	Long: `Show recent edits and generations, newest first.

Examples:
  imgedit history
  imgedit history -n 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initThemeFromConfig(cfg)

	if !cfg.History.Enabled {
		fmt.Fprintln(os.Stderr, "History is disabled (history.enabled: false)")
		return nil
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "No runs recorded yet")
		return nil
	}
	printRuns(cmd.OutOrStdout(), ui.NewStyles(os.Stdout), runs)
	return nil
}

func printRuns(w io.Writer, styles *ui.Styles, runs []history.Run) {
	for _, r := range runs {
		ok := r.Status == history.StatusOK
		status := string(r.Status)
		if r.HTTPStatus != 0 {
			status = fmt.Sprintf("%s %d", status, r.HTTPStatus)
		}
		header := fmt.Sprintf("%s  %s  %-8s %s/%s  %s",
			shortID(r.RunID),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Mode, r.Provider, r.Model,
			r.Duration.Round(100*time.Millisecond))
		fmt.Fprintln(w, styles.FormatResult(ok, header))

		fmt.Fprintf(w, "    %s\n", styles.Muted.Render(ui.Truncate(oneLine(r.Prompt), 72)))
		if ok {
			fmt.Fprintf(w, "    %s\n", styles.Highlighted.Render(r.OutputPath))
		} else {
			fmt.Fprintf(w, "    %s: %s\n", status, ui.Truncate(oneLine(r.Error), 72))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
