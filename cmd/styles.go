package cmd

import (
	"fmt"
	"os"

	"github.com/samsaffron/imgedit/internal/image"
	"github.com/samsaffron/imgedit/internal/ui"
	"github.com/spf13/cobra"
)

var stylesVerbose bool

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List preset styles",
	Long: `List the preset styles usable with --style.

Examples:
  imgedit styles
  imgedit styles -v          # include the full style prompts`,
	Args: cobra.NoArgs,
	RunE: runStyles,
}

func init() {
	stylesCmd.Flags().BoolVarP(&stylesVerbose, "verbose", "v", false, "Show the prompt each style adds")
	rootCmd.AddCommand(stylesCmd)
}

func runStyles(cmd *cobra.Command, args []string) error {
	styles := ui.NewStyles(os.Stdout)
	out := cmd.OutOrStdout()
	idStyle := styles.Highlighted.Width(24)
	for _, s := range image.Styles() {
		fmt.Fprintf(out, "%s %s\n", idStyle.Render(s.ID), s.Name)
		if stylesVerbose {
			fmt.Fprintf(out, "  %s\n\n", styles.Muted.Render(s.Prompt))
		}
	}
	return nil
}
