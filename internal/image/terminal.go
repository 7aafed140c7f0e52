package image

import (
	"fmt"
	goimage "image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/term"
)

// maxDisplayWidth caps the pixel width of inline previews.
const maxDisplayWidth = 800

// TerminalImageCapability represents the terminal's image rendering capability
type TerminalImageCapability int

const (
	CapNone  TerminalImageCapability = iota // No image support
	CapKitty                                // Kitty graphics protocol
	CapITerm                                // iTerm2 inline images
	CapSixel                                // Sixel graphics
)

// String returns the capability name
func (c TerminalImageCapability) String() string {
	switch c {
	case CapKitty:
		return "kitty"
	case CapITerm:
		return "iterm"
	case CapSixel:
		return "sixel"
	default:
		return "none"
	}
}

// DetectCapability detects the terminal's image rendering capability
// Detection order: Kitty -> iTerm -> Sixel -> None
func DetectCapability() TerminalImageCapability {
	return detectCapability(os.Getenv)
}

func detectCapability(getenv func(string) string) TerminalImageCapability {
	termName := getenv("TERM")
	termProgram := getenv("TERM_PROGRAM")

	switch {
	case getenv("KITTY_WINDOW_ID") != "", strings.Contains(termName, "kitty"), termProgram == "ghostty":
		return CapKitty
	case termProgram == "iTerm.app", getenv("LC_TERMINAL") == "iTerm2", termProgram == "WezTerm":
		return CapITerm
	case strings.Contains(termName, "sixel"), strings.Contains(termName, "mlterm"):
		return CapSixel
	}
	return CapNone
}

// RenderImageToWriter renders an image to a writer using the detected capability
func RenderImageToWriter(w io.Writer, path string) error {
	cap := DetectCapability()
	if cap == CapNone {
		return nil
	}

	img, err := loadImage(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	img = scaleImageIfNeeded(img, displayWidth())

	switch cap {
	case CapKitty:
		err = rasterm.KittyWriteImage(w, img, rasterm.KittyImgOpts{})
	case CapITerm:
		err = rasterm.ItermWriteImage(w, img)
	case CapSixel:
		// Sixel requires a paletted image
		err = rasterm.SixelWriteImage(w, convertToPaletted(img))
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// displayWidth estimates the terminal width in pixels (about 10px per
// column), capped at maxDisplayWidth.
func displayWidth() int {
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 {
		return maxDisplayWidth
	}
	return min(cols*10, maxDisplayWidth)
}

// loadImage loads an image from a file path
func loadImage(path string) (goimage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := goimage.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// scaleImageIfNeeded scales the image if it exceeds maxWidth
func scaleImageIfNeeded(img goimage.Image, maxWidth int) goimage.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	if width <= maxWidth {
		return img
	}

	newHeight := (bounds.Dy() * maxWidth) / width
	dst := goimage.NewRGBA(goimage.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// convertToPaletted converts an image to a paletted image for Sixel output
// using a 6x6x6 color cube plus 40 grays.
func convertToPaletted(img goimage.Image) *goimage.Paletted {
	bounds := img.Bounds()

	palette := make(color.Palette, 0, 256)
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				palette = append(palette, color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255})
			}
		}
	}
	for i := 0; i < 40; i++ {
		gray := uint8(i * 255 / 39)
		palette = append(palette, color.RGBA{R: gray, G: gray, B: gray, A: 255})
	}

	paletted := goimage.NewPaletted(bounds, palette)
	draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
	return paletted
}
