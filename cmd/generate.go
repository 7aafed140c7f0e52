package cmd

import (
	"github.com/samsaffron/imgedit/internal/history"
	"github.com/spf13/cobra"
)

var generateFlags imageFlags

var generateCmd = &cobra.Command{
	Use:     "generate <prompt>",
	Aliases: []string{"gen"},
	Short:   "Generate a new image from a text prompt",
	Long: `Generate an image from a prompt. Without --output the image is saved to
image.output_dir (default ~/Pictures/imgedit) under a timestamped name.

Examples:
  imgedit generate "a robot cat on a rainbow"
  imgedit generate "logo design" -o ./logo.png --no-display
  imgedit generate "sunset over mountains" --aspect 16:9 --provider kolors`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	generateFlags.register(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt, err := buildPrompt(args, generateFlags.style)
	if err != nil {
		return err
	}
	return runImageJob(imageJob{
		mode:   history.ModeGenerate,
		prompt: prompt,
		flags:  &generateFlags,
	})
}
