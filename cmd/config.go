package cmd

import (
	"fmt"
	"os"

	"github.com/samsaffron/imgedit/internal/config"
	"github.com/spf13/cobra"
)

var configShowPath bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show imgedit configuration",
	Long: `Show the effective configuration (file, defaults and environment merged).
API keys are masked.

Examples:
  imgedit config                      # show current config
  imgedit config --path               # print config file path
  imgedit config completion zsh       # generate shell completions`,
	Args: cobra.NoArgs,
	RunE: configShow,
}

var configCompletionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script on stdout.

Examples:
  imgedit config completion bash > ~/.bash_completion.d/imgedit
  imgedit config completion zsh > "${fpath[1]}/_imgedit"
  imgedit config completion fish > ~/.config/fish/completions/imgedit.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:      configCompletion,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "Print the configuration file path")
	configCmd.AddCommand(configCompletionCmd)
	rootCmd.AddCommand(configCmd)
}

func configShow(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	out := cmd.OutOrStdout()
	if configShowPath {
		fmt.Fprintln(out, configPath)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		fmt.Fprintf(out, "# No config file (using defaults)\n")
		fmt.Fprintf(out, "# Create one at: %s\n\n", configPath)
	} else {
		fmt.Fprintf(out, "# %s\n\n", configPath)
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func configCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(out)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}
