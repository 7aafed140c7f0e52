package clipboard

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ReadImage reads image data from the system clipboard
// Returns the image data and an error if clipboard doesn't contain an image
func ReadImage() ([]byte, error) {
	switch runtime.GOOS {
	case "darwin":
		return readImageMacOS()
	case "linux":
		return readImageLinux()
	default:
		return nil, fmt.Errorf("clipboard read not supported on %s", runtime.GOOS)
	}
}

func readImageMacOS() ([]byte, error) {
	// Try pngpaste first (clean PNG output)
	if pngpastePath, err := exec.LookPath("pngpaste"); err == nil {
		tmpFile, err := os.CreateTemp("", "imgedit-clip-*.png")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		tmpFile.Close()
		defer os.Remove(tmpPath)

		if err := exec.Command(pngpastePath, tmpPath).Run(); err == nil {
			data, err := os.ReadFile(tmpPath)
			if err == nil && len(data) > 0 {
				return data, nil
			}
		}
	}

	// Fallback: osascript dumps the clipboard as TIFF, sips converts to PNG
	tmpTiff, err := os.CreateTemp("", "imgedit-clip-*.tiff")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpTiffPath := tmpTiff.Name()
	tmpTiff.Close()
	defer os.Remove(tmpTiffPath)

	script := fmt.Sprintf(`set tiffData to (the clipboard as «class TIFF»)
set fp to open for access POSIX file "%s" with write permission
write tiffData to fp
close access fp`, tmpTiffPath)

	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return nil, fmt.Errorf("clipboard does not contain an image")
	}

	info, err := os.Stat(tmpTiffPath)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("clipboard is empty or not an image")
	}

	tmpPngPath := tmpTiffPath + ".png"
	defer os.Remove(tmpPngPath)

	if err := exec.Command("sips", "-s", "format", "png", tmpTiffPath, "--out", tmpPngPath).Run(); err != nil {
		// sips failed; the service accepts TIFF poorly but it's better than nothing
		return os.ReadFile(tmpTiffPath)
	}

	data, err := os.ReadFile(tmpPngPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted image: %w", err)
	}
	return data, nil
}

func readImageLinux() ([]byte, error) {
	// Wayland: ask which types are on offer, then fetch the best one
	if _, err := exec.LookPath("wl-paste"); err == nil {
		mime := "image/png"
		if types, err := exec.Command("wl-paste", "--list-types").Output(); err == nil {
			if preferred := detectPreferredImageMIME(string(types)); preferred != "" {
				mime = preferred
			}
		}
		if data, err := runCapture("wl-paste", "--type", mime); err == nil {
			return data, nil
		}
	}

	// X11
	if _, err := exec.LookPath("xclip"); err == nil {
		mime := "image/png"
		if types, err := exec.Command("xclip", "-selection", "clipboard", "-t", "TARGETS", "-o").Output(); err == nil {
			if preferred := detectPreferredImageMIME(string(types)); preferred != "" {
				mime = preferred
			}
		}
		if data, err := runCapture("xclip", "-selection", "clipboard", "-t", mime, "-o"); err == nil {
			return data, nil
		}
	}

	return nil, fmt.Errorf("clipboard does not contain an image (or no clipboard utility found)")
}

func runCapture(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s returned no data", name)
	}
	return out.Bytes(), nil
}

// detectPreferredImageMIME picks an image type from a newline separated
// list of clipboard targets. PNG wins, then JPEG, then any image type.
func detectPreferredImageMIME(types string) string {
	var first string
	hasJPEG := false
	for _, line := range strings.Split(types, "\n") {
		mime, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		mime = strings.ToLower(strings.TrimSpace(mime))
		if !strings.HasPrefix(mime, "image/") {
			continue
		}
		switch mime {
		case "image/png":
			return mime
		case "image/jpeg", "image/jpg":
			hasJPEG = true
		}
		if first == "" {
			first = mime
		}
	}
	if hasJPEG {
		return "image/jpeg"
	}
	return first
}

// CopyImage copies image data to the system clipboard
func CopyImage(imagePath string, imageData []byte) error {
	switch runtime.GOOS {
	case "darwin":
		return copyImageMacOS(imagePath)
	case "linux":
		return copyImageLinux(imageData)
	default:
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
}

func copyImageMacOS(imagePath string) error {
	script := fmt.Sprintf(`set the clipboard to (read (POSIX file "%s") as TIFF picture)`, imagePath)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		// Fallback: copy the path as text
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(imagePath)
		return cmd.Run()
	}
	return nil
}

func copyImageLinux(imageData []byte) error {
	if _, err := exec.LookPath("wl-copy"); err == nil {
		cmd := exec.Command("wl-copy", "--type", "image/png")
		cmd.Stdin = bytes.NewReader(imageData)
		return cmd.Run()
	}

	if _, err := exec.LookPath("xclip"); err == nil {
		cmd := exec.Command("xclip", "-selection", "clipboard", "-t", "image/png")
		cmd.Stdin = bytes.NewReader(imageData)
		return cmd.Run()
	}

	return fmt.Errorf("no clipboard utility found (install wl-copy or xclip)")
}
