package image

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestSanitizeForFilename(t *testing.T) {
	tests := map[string]string{
		"A robot cat!":        "a_robot_cat",
		"  spaces   here ":    "spaces_here",
		"make-it/../purple":   "make-itpurple",
		"改变图片风格":              "",
		"__under__score__":    "under_score",
	}
	for in, want := range tests {
		if got := sanitizeForFilename(in); got != want {
			t.Errorf("sanitizeForFilename(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestGenerateFilename(t *testing.T) {
	name := generateFilename("a very long prompt that goes on and on forever", ".png")
	if !regexp.MustCompile(`^\d{8}-\d{6}-[a-z0-9_-]+\.png$`).MatchString(name) {
		t.Errorf("unexpected filename %q", name)
	}
	if !strings.HasSuffix(generateFilename("", ".jpg"), "-image.jpg") {
		t.Errorf("empty prompt should fall back to 'image'")
	}
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pics")
	path, err := SaveImage([]byte("\x89PNG\r\n\x1a\nrest"), dir, "sunset")
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasSuffix(path, "-sunset.png") {
		t.Errorf("path=%q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file missing: %v", err)
	}
}

func TestGenerateToFileWithDebugProvider(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen.png")
	art, err := GenerateToFile(context.Background(), NewDebugProvider(0), GenerateRequest{Prompt: "x"}, out)
	if err != nil {
		t.Fatalf("GenerateToFile failed: %v", err)
	}
	if art.MimeType != "image/png" || art.Size == 0 {
		t.Errorf("artifact=%+v", art)
	}
	if _, err := loadImage(out); err != nil {
		t.Errorf("output is not a decodable image: %v", err)
	}
}

func TestGenerateToDir(t *testing.T) {
	dir := t.TempDir()
	art, err := GenerateToDir(context.Background(), NewDebugProvider(0), GenerateRequest{Prompt: "robot cat"}, dir)
	if err != nil {
		t.Fatalf("GenerateToDir failed: %v", err)
	}
	if filepath.Dir(art.Path) != dir || !strings.HasSuffix(art.Path, "-robot_cat.png") {
		t.Errorf("path=%q", art.Path)
	}
}
