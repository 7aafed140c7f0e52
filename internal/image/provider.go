package image

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samsaffron/imgedit/internal/config"
)

// ImageResult contains the generated image and metadata
type ImageResult struct {
	Data          []byte // Image data (PNG/JPEG)
	MimeType      string // "image/png", "image/jpeg", etc.
	RevisedPrompt string // Prompt as rewritten by the service, if reported
}

// GenerateRequest contains parameters for image generation
type GenerateRequest struct {
	Prompt      string
	Model       string // Empty means the provider default
	AspectRatio string // "1:1", "16:9", "9:16", ... (empty = provider default)
	Debug       bool
}

// EditRequest contains parameters for image editing
type EditRequest struct {
	Prompt      string
	Model       string // Empty means the provider default
	InputPath   string // File to upload; also used for filename and MIME type
	InputData   []byte // Preloaded image bytes (e.g. clipboard); InputPath is not opened when set
	AspectRatio string
	Debug       bool
}

// ImageProvider is the interface for image generation providers
type ImageProvider interface {
	// Name returns the provider name for logging
	Name() string

	// Generate creates a new image from a text prompt
	Generate(ctx context.Context, req GenerateRequest) (*ImageResult, error)

	// Edit modifies an existing image based on a prompt
	Edit(ctx context.Context, req EditRequest) (*ImageResult, error)

	// SupportsEdit returns true if the provider supports image editing
	SupportsEdit() bool
}

// KnownEditModels lists the model names the edit endpoint is known to accept.
// Other values are passed through unchanged.
var KnownEditModels = []string{"gpt-image-1", "gpt-4o"}

// IsKnownEditModel reports whether model is one of KnownEditModels.
func IsKnownEditModel(model string) bool {
	for _, m := range KnownEditModels {
		if m == model {
			return true
		}
	}
	return false
}

// NewImageProvider creates an image provider based on config.
// The override may be "provider" or "provider:model".
func NewImageProvider(cfg *config.Config, providerOverride string) (ImageProvider, error) {
	provider, model := parseProviderOverride(providerOverride)
	if provider == "" {
		provider = cfg.Image.Provider
	}
	if provider == "" {
		provider = "openai" // default
	}

	switch provider {
	case "openai":
		apiKey := cfg.Image.APIKey
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not configured. Set environment variable or add to image.api_key in config")
		}
		if model == "" {
			model = cfg.Image.Model
		}
		return NewOpenAIProvider(apiKey,
			WithBaseURL(cfg.Image.BaseURL),
			WithModel(model),
			WithHTTPClient(newHTTPClient(cfg.Image.Timeout)),
		), nil

	case "kolors", "siliconflow":
		k := cfg.Image.Kolors
		if k.APIKey == "" {
			return nil, fmt.Errorf("SILICONFLOW_API_KEY not configured. Set environment variable or add to image.kolors.api_key in config")
		}
		if model == "" {
			model = k.Model
		}
		return NewKolorsProvider(k.APIKey, KolorsOptions{
			BaseURL:           k.BaseURL,
			Model:             model,
			ImageSize:         k.ImageSize,
			NumInferenceSteps: k.Steps,
			GuidanceScale:     k.Guidance,
			Seed:              k.Seed,
			NegativePrompt:    k.NegativePrompt,
			HTTPClient:        newHTTPClient(cfg.Image.Timeout),
		}), nil

	case "debug":
		return NewDebugProvider(0), nil

	default:
		return nil, fmt.Errorf("unknown image provider: %s (valid: openai, kolors, debug)", provider)
	}
}

func parseProviderOverride(s string) (provider, model string) {
	provider, model, _ = strings.Cut(strings.TrimSpace(s), ":")
	return provider, model
}

// newHTTPClient returns a client with the given overall timeout.
// A zero timeout leaves the request bounded only by its context.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
