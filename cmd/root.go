package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samsaffron/imgedit/internal/image"
	"github.com/samsaffron/imgedit/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "imgedit",
	Short: "Edit and generate images with OpenAI-compatible image APIs",
	Long: `imgedit sends an image and a prompt to an image editing endpoint and
writes the returned image to disk.

Examples:
  imgedit edit "put this in a gift basket" -i photo.jpg
  imgedit edit "add a party hat" -i clipboard -o hat.png
  imgedit edit -i photo.jpg --style pixar
  imgedit edit "make it pop" -i photo.jpg --style pick
  imgedit generate "a robot cat on a rainbow"

  imgedit styles                  # list preset styles
  imgedit history                 # recent runs
  imgedit config                  # view configuration`,
	Version:           Version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, ui.DefaultStyles(), err)
		os.Exit(1)
	}
}

// reportError prints err the way a user needs to see it: remote rejections
// with their status, body and a hint; an empty result with its own message.
func reportError(w io.Writer, styles *ui.Styles, err error) {
	var apiErr *image.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintln(w, styles.FormatResult(false, apiErr.Error()))
		fmt.Fprintln(w, styles.Muted.Render(apiErr.Hint()))
	case image.IsNoImageData(err):
		fmt.Fprintln(w, styles.FormatResult(false, image.ErrNoImageData.Error()))
	case errors.Is(err, ui.ErrCancelled):
		fmt.Fprintln(w, styles.Muted.Render("Cancelled"))
	default:
		fmt.Fprintln(w, styles.FormatResult(false, "Error: "+err.Error()))
	}
}
