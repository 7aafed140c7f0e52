package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Theme defines the color palette for the UI
type Theme struct {
	Primary lipgloss.Color // accents (style ids, paths)
	Success lipgloss.Color // success states
	Error   lipgloss.Color // error states
	Warning lipgloss.Color // warnings and hints
	Muted   lipgloss.Color // dimmed/secondary text
	Text    lipgloss.Color // primary text
	Spinner lipgloss.Color // loading spinner
}

// DefaultTheme returns the default color theme (gruvbox)
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#b8bb26"), // gruvbox green
		Success: lipgloss.Color("#b8bb26"), // gruvbox green
		Error:   lipgloss.Color("#fb4934"), // gruvbox red
		Warning: lipgloss.Color("#fabd2f"), // gruvbox yellow
		Muted:   lipgloss.Color("#928374"), // gruvbox gray
		Text:    lipgloss.Color("#ebdbb2"), // gruvbox foreground
		Spinner: lipgloss.Color("#d3869b"), // gruvbox purple
	}
}

// ThemeConfig mirrors config.ThemeConfig for applying overrides
type ThemeConfig struct {
	Primary string
	Success string
	Error   string
	Muted   string
	Spinner string
}

// ThemeFromConfig creates a theme with config overrides applied
func ThemeFromConfig(cfg ThemeConfig) *Theme {
	theme := DefaultTheme()
	if cfg.Primary != "" {
		theme.Primary = lipgloss.Color(cfg.Primary)
	}
	if cfg.Success != "" {
		theme.Success = lipgloss.Color(cfg.Success)
	}
	if cfg.Error != "" {
		theme.Error = lipgloss.Color(cfg.Error)
	}
	if cfg.Muted != "" {
		theme.Muted = lipgloss.Color(cfg.Muted)
	}
	if cfg.Spinner != "" {
		theme.Spinner = lipgloss.Color(cfg.Spinner)
	}
	return theme
}

var currentTheme = DefaultTheme()

// GetTheme returns the current active theme
func GetTheme() *Theme {
	return currentTheme
}

// InitTheme initializes the theme from config
func InitTheme(cfg ThemeConfig) {
	currentTheme = ThemeFromConfig(cfg)
}

// Status indicators
const (
	SuccessIcon = "✓"
	FailIcon    = "✗"
	WarnIcon    = "!"
)

// Styles returns styled text helpers bound to a renderer
type Styles struct {
	theme *Theme

	Title       lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Highlighted lipgloss.Style
	Spinner     lipgloss.Style
}

// NewStyles creates a new Styles instance for the given output
func NewStyles(output *os.File) *Styles {
	return NewStyledWithTheme(output, currentTheme)
}

// NewStyledWithTheme creates styles with a specific theme
func NewStyledWithTheme(output *os.File, theme *Theme) *Styles {
	r := lipgloss.NewRenderer(output)
	return &Styles{
		theme:       theme,
		Title:       r.NewStyle().Bold(true).Foreground(theme.Text),
		Success:     r.NewStyle().Foreground(theme.Success),
		Error:       r.NewStyle().Foreground(theme.Error),
		Warning:     r.NewStyle().Foreground(theme.Warning),
		Muted:       r.NewStyle().Foreground(theme.Muted),
		Highlighted: r.NewStyle().Bold(true).Foreground(theme.Primary),
		Spinner:     r.NewStyle().Foreground(theme.Spinner),
	}
}

// DefaultStyles returns styles for stderr (default TUI output)
func DefaultStyles() *Styles {
	return NewStyles(os.Stderr)
}

// Theme returns the theme used by these styles
func (s *Styles) Theme() *Theme {
	return s.theme
}

// FormatResult returns a styled success/fail result
func (s *Styles) FormatResult(success bool, msg string) string {
	if success {
		return s.Success.Render(SuccessIcon+" ") + msg
	}
	return s.Error.Render(FailIcon+" ") + msg
}

// FormatWarning returns a styled warning line
func (s *Styles) FormatWarning(msg string) string {
	return s.Warning.Render(WarnIcon+" ") + msg
}

// Truncate shortens a string to maxLen display cells with ellipsis
func Truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
