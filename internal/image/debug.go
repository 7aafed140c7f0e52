package image

import (
	"bytes"
	"context"
	"fmt"
	goimage "image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"time"

	"golang.org/x/image/draw"
)

// DebugProvider implements ImageProvider without touching the network.
// Edits tint the input image; generations paint random rectangles.
type DebugProvider struct {
	delay time.Duration
}

// NewDebugProvider creates a debug provider with an optional delay (in seconds)
func NewDebugProvider(delaySeconds float64) *DebugProvider {
	return &DebugProvider{
		delay: time.Duration(delaySeconds * float64(time.Second)),
	}
}

func (p *DebugProvider) Name() string {
	return "Debug"
}

func (p *DebugProvider) SupportsEdit() bool {
	return true
}

func (p *DebugProvider) Generate(ctx context.Context, req GenerateRequest) (*ImageResult, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return encodePNG(randomImage(512, 512))
}

func (p *DebugProvider) Edit(ctx context.Context, req EditRequest) (*ImageResult, error) {
	src, err := openInput(req)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read input image: %w", err)
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	img, _, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		// Not a decodable image: behave like generation
		return encodePNG(randomImage(512, 512))
	}
	return encodePNG(tint(img))
}

func (p *DebugProvider) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(p.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tint blends a random translucent color over img.
func tint(img goimage.Image) goimage.Image {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := img.Bounds()
	dst := goimage.NewRGBA(goimage.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	overlay := goimage.NewUniform(color.NRGBA{
		R: uint8(rng.Intn(256)),
		G: uint8(rng.Intn(256)),
		B: uint8(rng.Intn(256)),
		A: 96,
	})
	draw.Draw(dst, dst.Bounds(), overlay, goimage.Point{}, draw.Over)
	return dst
}

func randomImage(width, height int) goimage.Image {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	img := goimage.NewRGBA(goimage.Rect(0, 0, width, height))

	randomColor := func() goimage.Image {
		return goimage.NewUniform(color.RGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 255,
		})
	}

	draw.Draw(img, img.Bounds(), randomColor(), goimage.Point{}, draw.Src)

	// 5-15 rectangles, clipped by draw to the image bounds
	numRects := 5 + rng.Intn(11)
	for i := 0; i < numRects; i++ {
		x1 := rng.Intn(width)
		y1 := rng.Intn(height)
		r := goimage.Rect(x1, y1, x1+20+rng.Intn(200), y1+20+rng.Intn(200))
		draw.Draw(img, r.Intersect(img.Bounds()), randomColor(), goimage.Point{}, draw.Src)
	}
	return img
}

func encodePNG(img goimage.Image) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &ImageResult{
		Data:     buf.Bytes(),
		MimeType: "image/png",
	}, nil
}
