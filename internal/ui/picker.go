package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Choice is one entry in a selection list.
type Choice struct {
	Value       string
	Label       string
	Description string
}

// formatChoice renders a choice with the label highlighted and a dim description
func formatChoice(styles *Styles, c Choice) string {
	label := styles.Highlighted.Render(c.Label)
	if c.Description == "" {
		return label
	}
	return label + "  " + styles.Muted.Render(Truncate(c.Description, 60))
}

// Pick asks the user to choose one of choices and returns its Value.
// The form talks to /dev/tty directly so piped output is untouched.
func Pick(title string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("nothing to choose from")
	}

	tty, ttyErr := getTTY()
	if ttyErr != nil {
		return "", fmt.Errorf("interactive selection needs a terminal: %w", ttyErr)
	}
	defer tty.Close()

	styles := NewStyles(tty)
	options := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		options = append(options, huh.NewOption(formatChoice(styles, c), c.Value))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Height(min(len(options)+2, 15)).
				Value(&selected),
		),
	).WithInput(tty).WithOutput(tty)

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}
