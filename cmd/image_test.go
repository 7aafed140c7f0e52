package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samsaffron/imgedit/internal/config"
	"github.com/samsaffron/imgedit/internal/history"
	"github.com/samsaffron/imgedit/internal/image"
	"github.com/samsaffron/imgedit/internal/input"
	"github.com/samsaffron/imgedit/internal/ui"
)

// testEnv isolates config and history and points the OpenAI provider at srv.
func testEnv(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", srv.URL+"/v1")
	t.Setenv("SILICONFLOW_API_KEY", "")
	t.Setenv("KOLORS_API_KEY", "")
	return dir
}

func listRuns(t *testing.T, dir string) []history.Run {
	t.Helper()
	store, err := history.NewSQLiteStore(filepath.Join(dir, "data", "imgedit", "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()
	runs, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return runs
}

func TestRunImageJobEdit(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		fmt.Fprintf(w, `{"data":[{"b64_json":%q}]}`, base64.StdEncoding.EncodeToString([]byte("edited")))
	}))
	defer srv.Close()
	dir := testEnv(t, srv)

	in := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(in, []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out", "basket.png")

	err := runImageJob(imageJob{
		mode:   history.ModeEdit,
		prompt: "gift basket",
		input:  input.Image{Path: in},
		flags:  &imageFlags{model: "gpt-4o", output: out, noDisplay: true, debug: true},
	})
	if err != nil {
		t.Fatalf("runImageJob failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if string(data) != "edited" {
		t.Errorf("output=%q", data)
	}
	if gotModel != "gpt-4o" {
		t.Errorf("model=%q, want gpt-4o", gotModel)
	}

	runs := listRuns(t, dir)
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != history.StatusOK || runs[0].OutputPath != out || runs[0].Model != "gpt-4o" {
		t.Errorf("run=%+v", runs[0])
	}
}

func TestRunImageJobAPIErrorRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()
	dir := testEnv(t, srv)

	in := filepath.Join(dir, "photo.png")
	os.WriteFile(in, []byte("png"), 0644)
	out := filepath.Join(dir, "never.png")

	err := runImageJob(imageJob{
		mode:   history.ModeEdit,
		prompt: "p",
		input:  input.Image{Path: in},
		flags:  &imageFlags{output: out, noDisplay: true, debug: true},
	})
	if err != nil {
		t.Fatalf("remote rejection should be reported, not returned: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output should be written on failure")
	}

	runs := listRuns(t, dir)
	if len(runs) != 1 || runs[0].Status != history.StatusAPIError || runs[0].HTTPStatus != 429 {
		t.Errorf("runs=%+v", runs)
	}
}

func TestRunImageJobNoDataRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()
	dir := testEnv(t, srv)

	in := filepath.Join(dir, "photo.png")
	os.WriteFile(in, []byte("png"), 0644)
	out := filepath.Join(dir, "never.png")

	err := runImageJob(imageJob{
		mode:   history.ModeEdit,
		prompt: "p",
		input:  input.Image{Path: in},
		flags:  &imageFlags{output: out, noDisplay: true, debug: true},
	})
	if err != nil {
		t.Fatalf("empty result should be reported, not returned: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output should be written for an empty result")
	}

	runs := listRuns(t, dir)
	if len(runs) != 1 || runs[0].Status != history.StatusNoData {
		t.Errorf("runs=%+v", runs)
	}
}

func TestRunImageJobMissingInputBeforeCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	dir := testEnv(t, srv)
	t.Setenv("OPENAI_API_KEY", "")

	err := runImageJob(imageJob{
		mode:   history.ModeEdit,
		prompt: "p",
		input:  input.Image{Path: filepath.Join(dir, "missing.png")},
		flags:  &imageFlags{noDisplay: true, debug: true},
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want the input file error", err)
	}
}

func TestRunImageJobMissingInput(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()
	dir := testEnv(t, srv)

	err := runImageJob(imageJob{
		mode:   history.ModeEdit,
		prompt: "p",
		input:  input.Image{Path: filepath.Join(dir, "missing.png")},
		flags:  &imageFlags{output: filepath.Join(dir, "o.png"), noDisplay: true, debug: true},
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want not-exist", err)
	}
	if calls != 0 {
		t.Errorf("expected no requests, got %d", calls)
	}
}

func TestClassifyRun(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus history.Status
		wantHTTP   int
	}{
		{"ok", nil, history.StatusOK, 0},
		{"api error", fmt.Errorf("wrapped: %w", &image.APIError{StatusCode: 401, Body: "no"}), history.StatusAPIError, 401},
		{"no data", image.ErrNoImageData, history.StatusNoData, 0},
		{"other", errors.New("disk full"), history.StatusError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &history.Run{}
			var art *image.Artifact
			if tt.err == nil {
				art = &image.Artifact{Path: "edited.png"}
			}
			classifyRun(run, art, tt.err)
			if run.Status != tt.wantStatus || run.HTTPStatus != tt.wantHTTP {
				t.Errorf("run=%+v", run)
			}
			if tt.err == nil && run.OutputPath != "edited.png" {
				t.Errorf("output path not recorded: %+v", run)
			}
			if tt.err != nil && run.Error == "" {
				t.Error("error text not recorded")
			}
		})
	}
}

func TestReportError(t *testing.T) {
	styles := ui.NewStyledWithTheme(os.Stderr, ui.DefaultTheme())
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"api error", &image.APIError{StatusCode: 500, Body: "server error"}, []string{"API error (status 500): server error", "server error"}},
		{"no data", fmt.Errorf("edit: %w", image.ErrNoImageData), []string{"no image data in response"}},
		{"cancelled", ui.ErrCancelled, []string{"Cancelled"}},
		{"other", errors.New("boom"), []string{"Error: boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, styles, tt.err)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestApplyProviderOverrides(t *testing.T) {
	tests := []struct {
		name         string
		providerFlag string
		modelFlag    string
		wantProvider string
		wantModel    string
		wantKolors   string
	}{
		{"none", "", "", "openai", "gpt-image-1", "Kwai-Kolors/Kolors"},
		{"model flag", "", "gpt-4o", "openai", "gpt-4o", "Kwai-Kolors/Kolors"},
		{"provider with model", "openai:gpt-4o", "", "openai", "gpt-4o", "Kwai-Kolors/Kolors"},
		{"model flag wins", "openai:gpt-4o", "custom", "openai", "custom", "Kwai-Kolors/Kolors"},
		{"kolors model", "kolors", "other/model", "kolors", "gpt-image-1", "other/model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Image: config.ImageConfig{Provider: "openai", Model: "gpt-image-1"}}
			cfg.Image.Kolors.Model = "Kwai-Kolors/Kolors"
			applyProviderOverrides(cfg, tt.providerFlag, tt.modelFlag)
			if cfg.Image.Provider != tt.wantProvider || cfg.Image.Model != tt.wantModel || cfg.Image.Kolors.Model != tt.wantKolors {
				t.Errorf("got provider=%q model=%q kolors=%q", cfg.Image.Provider, cfg.Image.Model, cfg.Image.Kolors.Model)
			}
			if got := configuredModel(cfg); tt.wantProvider == "kolors" && got != tt.wantKolors {
				t.Errorf("configuredModel=%q", got)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	got, err := buildPrompt([]string{"add", "a", "bow"}, "pixar")
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}
	if !strings.Contains(got, "Pixar") || !strings.HasSuffix(got, ". add a bow") {
		t.Errorf("prompt=%q", got)
	}

	if _, err := buildPrompt([]string{"x"}, "nosuchstyle"); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestPrintRuns(t *testing.T) {
	styles := ui.NewStyledWithTheme(os.Stderr, ui.DefaultTheme())
	var buf bytes.Buffer
	printRuns(&buf, styles, []history.Run{
		{CreatedAt: time.Now(), Mode: history.ModeEdit, Provider: "OpenAI", Model: "gpt-image-1", Prompt: "line one\nline two", Status: history.StatusOK, OutputPath: "edited.png"},
		{CreatedAt: time.Now(), Mode: history.ModeEdit, Provider: "OpenAI", Model: "gpt-4o", Prompt: "p", Status: history.StatusAPIError, HTTPStatus: 401, Error: "API error (status 401): bad key"},
	})
	out := buf.String()
	for _, want := range []string{"line one line two", "edited.png", "api_error 401", "bad key"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFilterPrefix(t *testing.T) {
	got, _ := ProviderFlagCompletion(nil, nil, "open")
	if len(got) != 1 || got[0] != "openai" {
		t.Errorf("provider completion=%v", got)
	}
	got, _ = ProviderFlagCompletion(nil, nil, "openai:gpt-4")
	if len(got) != 1 || got[0] != "openai:gpt-4o" {
		t.Errorf("model completion=%v", got)
	}
	got, _ = StyleFlagCompletion(nil, nil, "pi")
	if len(got) != 2 {
		t.Errorf("style completion=%v, want pick and pixar", got)
	}
}
