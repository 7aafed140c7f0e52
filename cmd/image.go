package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samsaffron/imgedit/internal/config"
	"github.com/samsaffron/imgedit/internal/history"
	"github.com/samsaffron/imgedit/internal/image"
	"github.com/samsaffron/imgedit/internal/input"
	"github.com/samsaffron/imgedit/internal/signal"
	"github.com/samsaffron/imgedit/internal/ui"
	"github.com/spf13/cobra"
)

// stylePick is the --style value that opens the interactive picker.
const stylePick = "pick"

// imageFlags are shared by edit and generate
type imageFlags struct {
	model       string
	output      string
	provider    string
	style       string
	aspect      string
	noDisplay   bool
	noClipboard bool
	debug       bool
}

func (f *imageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model name sent to the service (e.g. gpt-image-1, gpt-4o)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output path")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Override provider (openai, kolors, debug), optionally provider:model")
	cmd.Flags().StringVarP(&f.style, "style", "s", "", "Preset style id, or 'pick' to choose interactively")
	cmd.Flags().StringVar(&f.aspect, "aspect", "", "Aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	cmd.Flags().BoolVar(&f.noDisplay, "no-display", false, "Skip terminal display")
	cmd.Flags().BoolVar(&f.noClipboard, "no-clipboard", false, "Skip clipboard copy")
	cmd.Flags().BoolVarP(&f.debug, "debug", "d", false, "Show debug information")

	cmd.RegisterFlagCompletionFunc("provider", ProviderFlagCompletion)
	cmd.RegisterFlagCompletionFunc("model", ModelFlagCompletion)
	cmd.RegisterFlagCompletionFunc("style", StyleFlagCompletion)
	cmd.RegisterFlagCompletionFunc("aspect", AspectFlagCompletion)
}

// imageJob is one edit or generation as assembled from the command line
type imageJob struct {
	mode   history.Mode
	prompt string
	input  input.Image
	flags  *imageFlags
}

// resolveStyle returns the preset named by the --style flag.
func resolveStyle(flag string) (image.Style, error) {
	flag = strings.TrimSpace(flag)
	switch flag {
	case "":
		return image.Style{}, nil
	case stylePick:
		return pickStyle()
	default:
		return image.LookupStyle(flag)
	}
}

func pickStyle() (image.Style, error) {
	styles := image.Styles()
	choices := make([]ui.Choice, 0, len(styles))
	for _, s := range styles {
		choices = append(choices, ui.Choice{Value: s.ID, Label: s.Name, Description: s.ID})
	}
	id, err := ui.Pick("Choose a style", choices)
	if err != nil {
		return image.Style{}, err
	}
	return image.LookupStyle(id)
}

// buildPrompt combines args (or stdin when there are none) with the style.
func buildPrompt(args []string, styleFlag string) (string, error) {
	var stdin string
	if len(args) == 0 {
		var err error
		stdin, err = input.ReadStdin()
		if err != nil {
			return "", err
		}
	}

	style, err := resolveStyle(styleFlag)
	if err != nil {
		return "", err
	}

	prompt := image.ApplyStyle(style, input.JoinPrompt(args, stdin))
	if prompt == "" {
		return "", fmt.Errorf("prompt required: provide as argument, via stdin, or with --style")
	}
	return prompt, nil
}

// configuredModel is the model the selected provider will send.
func configuredModel(cfg *config.Config) string {
	switch cfg.Image.Provider {
	case "kolors", "siliconflow":
		return cfg.Image.Kolors.Model
	case "debug":
		return "debug"
	default:
		return cfg.Image.Model
	}
}

// checkInput reports an unreadable input file before any provider or
// credential is looked at.
func checkInput(img input.Image) error {
	if img.Data != nil {
		return nil
	}
	if _, err := os.Stat(img.Path); err != nil {
		return fmt.Errorf("failed to open input image: %w", err)
	}
	return nil
}

// runImageJob runs one edit or generation. A remote rejection or an empty
// result is reported on stderr and is not a command failure.
func runImageJob(job imageJob) error {
	if job.mode == history.ModeEdit {
		if err := checkInput(job.input); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background())
	defer stop()

	f := job.flags
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initThemeFromConfig(cfg)
	applyProviderOverrides(cfg, f.provider, f.model)
	styles := ui.DefaultStyles()

	provider, err := image.NewImageProvider(cfg, "")
	if err != nil {
		return err
	}
	if job.mode == history.ModeEdit && !provider.SupportsEdit() {
		return fmt.Errorf("provider %s does not support image editing", provider.Name())
	}
	model := configuredModel(cfg)

	if f.debug {
		fmt.Fprintf(os.Stderr, "Using provider: %s\n", provider.Name())
		fmt.Fprintf(os.Stderr, "Model: %s\n", model)
		if job.mode == history.ModeEdit && provider.Name() == "OpenAI" && !image.IsKnownEditModel(model) {
			fmt.Fprintln(os.Stderr, styles.FormatWarning(fmt.Sprintf("model %q is not a known edit model, sending as is", model)))
		}
		fmt.Fprintf(os.Stderr, "Prompt: %q\n", job.prompt)
		if job.mode == history.ModeEdit {
			if job.input.Data != nil {
				fmt.Fprintf(os.Stderr, "Input image: clipboard (%d bytes)\n", len(job.input.Data))
			} else {
				fmt.Fprintf(os.Stderr, "Input image: %s\n", job.input.Path)
			}
		}
	}

	store, err := openHistory(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.FormatWarning(err.Error()))
		store = history.NoopStore{}
	}
	defer store.Close()

	run := &history.Run{
		Mode:      job.mode,
		Provider:  provider.Name(),
		Model:     model,
		Prompt:    job.prompt,
		InputPath: job.input.Path,
	}

	message := "Generating image"
	if job.mode == history.ModeEdit {
		message = "Editing image"
	}

	start := time.Now()
	artifact, err := ui.RunWithSpinner(ctx, message, f.debug, func(ctx context.Context) (*image.Artifact, error) {
		return executeJob(ctx, provider, cfg, job)
	})
	run.Duration = time.Since(start)
	classifyRun(run, artifact, err)

	if recErr := store.Record(context.Background(), run); recErr != nil {
		fmt.Fprintln(os.Stderr, styles.FormatWarning(fmt.Sprintf("failed to record history: %v", recErr)))
	} else if f.debug && run.RunID != "" {
		fmt.Fprintf(os.Stderr, "Run: %s\n", run.RunID)
	}
	if err != nil {
		if run.Status == history.StatusAPIError || run.Status == history.StatusNoData {
			reportError(os.Stderr, styles, err)
			return nil
		}
		return err
	}

	fmt.Fprintf(os.Stderr, "Saved to: %s\n", artifact.Path)
	if f.debug {
		fmt.Fprintf(os.Stderr, "Wrote %d bytes (%s) in %s\n", artifact.Size, artifact.MimeType, run.Duration.Round(time.Millisecond))
		if artifact.RevisedPrompt != "" {
			fmt.Fprintf(os.Stderr, "Revised prompt: %s\n", artifact.RevisedPrompt)
		}
	}

	if cfg.Image.Display && !f.noDisplay {
		if err := image.DisplayImage(artifact.Path); err != nil && f.debug {
			fmt.Fprintf(os.Stderr, "Display warning: %v\n", err)
		}
	}

	if cfg.Image.Clipboard && !f.noClipboard {
		data, err := os.ReadFile(artifact.Path)
		if err == nil {
			err = image.CopyToClipboard(artifact.Path, data)
		}
		if err != nil {
			if f.debug {
				fmt.Fprintf(os.Stderr, "Clipboard warning: %v\n", err)
			}
		} else {
			fmt.Fprintln(os.Stderr, "Copied to clipboard")
		}
	}

	return nil
}

func executeJob(ctx context.Context, provider image.ImageProvider, cfg *config.Config, job imageJob) (*image.Artifact, error) {
	f := job.flags
	if job.mode == history.ModeEdit {
		output := f.output
		if output == "" {
			output = cfg.Image.Output
		}
		return image.EditToFile(ctx, provider, image.EditRequest{
			Prompt:      job.prompt,
			InputPath:   job.input.Path,
			InputData:   job.input.Data,
			AspectRatio: f.aspect,
			Debug:       f.debug,
		}, output)
	}

	req := image.GenerateRequest{
		Prompt:      job.prompt,
		AspectRatio: f.aspect,
		Debug:       f.debug,
	}
	if f.output != "" {
		return image.GenerateToFile(ctx, provider, req, f.output)
	}
	return image.GenerateToDir(ctx, provider, req, cfg.Image.OutputDir)
}

// classifyRun fills in the outcome fields of run.
func classifyRun(run *history.Run, artifact *image.Artifact, err error) {
	var apiErr *image.APIError
	switch {
	case err == nil:
		run.Status = history.StatusOK
		if artifact != nil {
			run.OutputPath = artifact.Path
		}
		return
	case errors.As(err, &apiErr):
		run.Status = history.StatusAPIError
		run.HTTPStatus = apiErr.StatusCode
	case image.IsNoImageData(err):
		run.Status = history.StatusNoData
	default:
		run.Status = history.StatusError
	}
	run.Error = err.Error()
}
