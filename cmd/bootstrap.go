package cmd

import (
	"fmt"
	"strings"

	"github.com/samsaffron/imgedit/internal/config"
	"github.com/samsaffron/imgedit/internal/history"
	"github.com/samsaffron/imgedit/internal/ui"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyProviderOverrides applies --provider (optionally "provider:model") and
// --model. An explicit --model wins over the model part of --provider.
func applyProviderOverrides(cfg *config.Config, providerFlag, modelFlag string) {
	provider, model, _ := strings.Cut(strings.TrimSpace(providerFlag), ":")
	if modelFlag != "" {
		model = modelFlag
	}
	cfg.ApplyOverrides(provider, model)
}

func initThemeFromConfig(cfg *config.Config) {
	ui.InitTheme(ui.ThemeConfig{
		Primary: cfg.Theme.Primary,
		Success: cfg.Theme.Success,
		Error:   cfg.Theme.Error,
		Muted:   cfg.Theme.Muted,
		Spinner: cfg.Theme.Spinner,
	})
}

func openHistory(cfg *config.Config) (history.Store, error) {
	store, err := history.NewStore(cfg.History.Enabled, cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
