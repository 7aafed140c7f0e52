package image

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/samsaffron/imgedit/internal/clipboard"
)

// DefaultOutputFile is where an edited image lands when no path is given.
const DefaultOutputFile = "edited.png"

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

// WriteOutput writes image data to path, creating parent directories.
func WriteOutput(path string, data []byte) error {
	path = expandPath(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// SaveImage saves image data to the configured output directory
// Returns the path where the image was saved
func SaveImage(data []byte, outputDir, prompt string) (string, error) {
	dir := expandPath(outputDir)

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := generateFilename(prompt, extensionForMime(sniffMimeType(data)))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return path, nil
}

// DisplayImage shows the image inline in the terminal.
// Display is best effort: unsupported terminals fall back to icat, then nothing.
func DisplayImage(imagePath string) error {
	if DetectCapability() != CapNone {
		return RenderImageToWriter(os.Stdout, imagePath)
	}

	// Try kitten icat first (newer kitty)
	if kittenPath, err := exec.LookPath("kitten"); err == nil {
		cmd := exec.Command(kittenPath, "icat", imagePath)
		cmd.Stdout = os.Stdout
		cmd.Run()
		return nil
	}

	if icatPath, err := exec.LookPath("icat"); err == nil {
		cmd := exec.Command(icatPath, imagePath)
		cmd.Stdout = os.Stdout
		cmd.Run()
	}
	return nil
}

// CopyToClipboard copies image to clipboard (platform-aware)
func CopyToClipboard(imagePath string, imageData []byte) error {
	return clipboard.CopyImage(imagePath, imageData)
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

// generateFilename creates a filename from timestamp and sanitized prompt
func generateFilename(prompt, ext string) string {
	timestamp := time.Now().Format("20060102-150405")
	safe := sanitizeForFilename(prompt)
	if len(safe) > 30 {
		safe = strings.TrimRight(safe[:30], "_-")
	}
	if safe == "" {
		safe = "image"
	}
	return fmt.Sprintf("%s-%s%s", timestamp, safe, ext)
}

// sanitizeForFilename removes/replaces characters unsafe for filenames
func sanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}
