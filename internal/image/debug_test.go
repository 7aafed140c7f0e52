package image

import (
	"bytes"
	"context"
	"errors"
	goimage "image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDebugProviderEditKeepsDimensions(t *testing.T) {
	src := goimage.NewRGBA(goimage.Rect(0, 0, 40, 30))
	src.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := NewDebugProvider(0).Edit(context.Background(), EditRequest{Prompt: "p", InputPath: path})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("result is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("bounds=%v, want 40x30", b)
	}
}

func TestDebugProviderEditMissingInput(t *testing.T) {
	_, err := NewDebugProvider(0).Edit(context.Background(), EditRequest{InputPath: filepath.Join(t.TempDir(), "nope.png")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err=%v, want fs.ErrNotExist", err)
	}
}

func TestDebugProviderRespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := NewDebugProvider(5).Generate(ctx, GenerateRequest{Prompt: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err=%v, want deadline exceeded", err)
	}
}
