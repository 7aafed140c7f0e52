package cmd

import (
	"github.com/samsaffron/imgedit/internal/history"
	"github.com/samsaffron/imgedit/internal/input"
	"github.com/spf13/cobra"
)

var (
	editInput string
	editFlags imageFlags
)

var editCmd = &cobra.Command{
	Use:   "edit <prompt>",
	Short: "Edit an image with a text prompt",
	Long: `Upload an image with a prompt to the images/edits endpoint and save the
returned image.

The result is written to ./edited.png unless --output or image.output says
otherwise.

Examples:
  imgedit edit "put this in a gift basket" -i photo.jpg
  imgedit edit "add a hat" -i clipboard          # edit from clipboard
  imgedit edit "make it purple" -i cat.png -m gpt-4o -o purple.png
  imgedit edit -i me.jpg --style pixar            # preset style only
  echo "add snow" | imgedit edit -i cabin.png     # prompt from stdin`,
	Args: cobra.ArbitraryArgs,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editInput, "input", "i", "", "Input image to edit (path or 'clipboard')")
	editFlags.register(editCmd)
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	img, err := input.ResolveImage(editInput)
	if err != nil {
		return err
	}
	prompt, err := buildPrompt(args, editFlags.style)
	if err != nil {
		return err
	}
	return runImageJob(imageJob{
		mode:   history.ModeEdit,
		prompt: prompt,
		input:  img,
		flags:  &editFlags,
	})
}
