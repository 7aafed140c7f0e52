package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samsaffron/imgedit/internal/clipboard"
	"golang.org/x/term"
)

// ClipboardSource is the --input value that reads the image from the clipboard.
const ClipboardSource = "clipboard"

// Image is the image to be edited.
type Image struct {
	Path string // File path, or a synthetic name for clipboard data
	Data []byte // Set when the image did not come from a file
}

// HasStdin returns true if stdin has data available (not a TTY)
func HasStdin() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode()&os.ModeCharDevice) == 0 || fi.Size() > 0
}

// ReadStdin reads all content from stdin
// Returns empty string if stdin is a TTY or has no data
func ReadStdin() (string, error) {
	if !HasStdin() {
		return "", nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// JoinPrompt builds the prompt from command arguments and piped stdin.
// Arguments come first; stdin is appended on its own paragraph.
func JoinPrompt(args []string, stdin string) string {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	stdin = strings.TrimSpace(stdin)
	switch {
	case prompt == "":
		return stdin
	case stdin == "":
		return prompt
	default:
		return prompt + "\n\n" + stdin
	}
}

// ResolveImage turns an --input value into an Image. Files are not opened
// here: the request opens them so a missing file fails at the same point
// for every provider.
func ResolveImage(source string) (Image, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Image{}, fmt.Errorf("input image required (use --input/-i <file> or --input clipboard)")
	}
	if strings.EqualFold(source, ClipboardSource) {
		data, err := clipboard.ReadImage()
		if err != nil {
			return Image{}, fmt.Errorf("failed to read clipboard: %w", err)
		}
		return Image{Path: "clipboard.png", Data: data}, nil
	}
	return Image{Path: expandPath(source)}, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
