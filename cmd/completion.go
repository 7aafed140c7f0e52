package cmd

import (
	"strings"

	"github.com/samsaffron/imgedit/internal/image"
	"github.com/spf13/cobra"
)

var providerNames = []string{"openai", "kolors", "siliconflow", "debug"}

// ProviderFlagCompletion completes --provider values, including
// "provider:model" for the known edit models.
func ProviderFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if provider, _, ok := strings.Cut(toComplete, ":"); ok {
		var completions []string
		if provider == "openai" {
			for _, m := range image.KnownEditModels {
				completions = append(completions, provider+":"+m)
			}
		}
		return filterPrefix(completions, toComplete), cobra.ShellCompDirectiveNoFileComp
	}

	// No colon yet: don't add a space so the user can type ":"
	return filterPrefix(providerNames, toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// ModelFlagCompletion completes --model with the known edit models.
func ModelFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(image.KnownEditModels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// StyleFlagCompletion completes --style with preset ids and "pick".
func StyleFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	completions := []string{stylePick + "\topen the style picker"}
	for _, s := range image.Styles() {
		completions = append(completions, s.ID+"\t"+s.Name)
	}
	return filterPrefix(completions, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// AspectFlagCompletion completes --aspect.
func AspectFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix([]string{"1:1", "16:9", "9:16", "4:3", "3:4", "3:2", "2:3"}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
