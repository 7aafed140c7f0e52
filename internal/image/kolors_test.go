package image

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewKolorsProviderDefaults(t *testing.T) {
	provider := NewKolorsProvider("api-key", KolorsOptions{})
	if provider.opts.Model != kolorsDefaultModel {
		t.Errorf("expected default model %q, got %q", kolorsDefaultModel, provider.opts.Model)
	}
	if provider.opts.NumInferenceSteps != kolorsDefaultSteps {
		t.Errorf("expected %d steps, got %d", kolorsDefaultSteps, provider.opts.NumInferenceSteps)
	}
	if provider.opts.GuidanceScale != kolorsDefaultGuidance {
		t.Errorf("expected guidance %v, got %v", kolorsDefaultGuidance, provider.opts.GuidanceScale)
	}
	if provider.opts.ImageSize != kolorsDefaultImageSize {
		t.Errorf("expected size %q, got %q", kolorsDefaultImageSize, provider.opts.ImageSize)
	}
}

func TestKolorsEditSendsInlineImage(t *testing.T) {
	var got kolorsRequest
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-kolors" {
			t.Errorf("Authorization=%q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"images":  []map[string]string{{"url": srv.URL + "/files/out.png"}},
			"timings": map[string]float64{"inference": 1.2},
			"seed":    42,
		})
	})
	mux.HandleFunc("/files/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("kolors-image"))
	})

	p := NewKolorsProvider("sk-kolors", KolorsOptions{
		BaseURL:        srv.URL + "/v1/",
		NegativePrompt: "blurry",
		Seed:           7,
		HTTPClient:     srv.Client(),
	})
	result, err := p.Edit(context.Background(), EditRequest{
		Prompt:    "pixar style",
		InputPath: writeInput(t, []byte("jpeg")),
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if string(result.Data) != "kolors-image" {
		t.Errorf("data=%q", result.Data)
	}
	if got.Model != kolorsDefaultModel || got.Prompt != "pixar style" || got.BatchSize != 1 {
		t.Errorf("request=%+v", got)
	}
	if got.NegativePrompt != "blurry" || got.Seed != 7 {
		t.Errorf("optional fields not sent: %+v", got)
	}
	if !strings.HasPrefix(got.Image, "data:image/jpeg;base64,") {
		t.Errorf("image=%q, want jpeg data URL", got.Image)
	}
}

func TestKolorsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"empty images", 200, `{"images":[]}`, func(err error) bool { return errors.Is(err, ErrNoImageData) }},
		{"missing url", 200, `{"images":[{}]}`, func(err error) bool { return errors.Is(err, ErrMissingImage) }},
		{"rate limited", 429, `{"code":50603,"message":"rate limit"}`, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 429 && apiErr.Message == "rate limit"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewKolorsProvider("k", KolorsOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
			_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "p"})
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestKolorsSizeFromAspectRatio(t *testing.T) {
	tests := map[string]string{
		"":     "1024x1024",
		"1:1":  "1024x1024",
		"16:9": "1024x576",
		"9:16": "576x1024",
		"4:3":  "1024x768",
		"3:4":  "768x1024",
	}
	for ratio, want := range tests {
		if got := kolorsSizeFromAspectRatio(ratio); got != want {
			t.Errorf("kolorsSizeFromAspectRatio(%q) = %q, want %q", ratio, got, want)
		}
	}
}
