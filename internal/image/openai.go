package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiGeneratePath   = "/images/generations"
	openaiEditPath       = "/images/edits"
	openaiDefaultModel   = "gpt-image-1"
	openaiHTTPTimeout    = 10 * time.Minute
)

// OpenAIProvider implements ImageProvider against an OpenAI-compatible
// images API (api.openai.com or any proxy that speaks the same protocol).
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithBaseURL points the provider at another OpenAI-compatible endpoint.
func WithBaseURL(u string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel sets the default model used when a request does not name one.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    openaiDefaultBaseURL,
		model:      openaiDefaultModel,
		httpClient: &http.Client{Timeout: openaiHTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (p *OpenAIProvider) SupportsEdit() bool {
	return true
}

// Model returns the default model for requests that do not set one.
func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (*ImageResult, error) {
	genReq := openaiGenerateRequest{
		Model:  p.modelFor(req.Model),
		Prompt: req.Prompt,
		Size:   openaiSizeFromAspectRatio(req.AspectRatio),
		N:      1,
	}
	// dall-e models need response_format to return base64; gpt-image always does.
	if !strings.HasPrefix(genReq.Model, "gpt-image") {
		genReq.ResponseFormat = "b64_json"
	}

	jsonBody, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+openaiGeneratePath, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	if req.Debug {
		fmt.Fprintf(os.Stderr, "[openai] POST %s model=%s (%d bytes)\n", httpReq.URL, genReq.Model, len(jsonBody))
	}
	return p.doRequest(httpReq, req.Debug)
}

func (p *OpenAIProvider) Edit(ctx context.Context, req EditRequest) (*ImageResult, error) {
	if req.InputPath == "" && req.InputData == nil {
		return nil, fmt.Errorf("no input image provided")
	}

	body, contentType, err := p.buildEditBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+openaiEditPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	if req.Debug {
		fmt.Fprintf(os.Stderr, "[openai] POST %s model=%s (%d bytes multipart)\n", httpReq.URL, p.modelFor(req.Model), body.Len())
	}
	return p.doRequest(httpReq, req.Debug)
}

// buildEditBody assembles the multipart form. The input file is open only
// while its bytes are copied into the form.
func (p *OpenAIProvider) buildEditBody(req EditRequest) (*bytes.Buffer, string, error) {
	src, err := openInput(req)
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// Add image file with proper mime type
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image[]"; filename="%s"`, inputFilename(req.InputPath)))
	h.Set("Content-Type", getMimeType(req.InputPath))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to write image data: %w", err)
	}

	fields := [][2]string{
		{"model", p.modelFor(req.Model)},
		{"prompt", req.Prompt},
	}
	if req.AspectRatio != "" {
		fields = append(fields, [2]string{"size", openaiSizeFromAspectRatio(req.AspectRatio)})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", f[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

func (p *OpenAIProvider) modelFor(model string) string {
	if model != "" {
		return model
	}
	return p.model
}

func (p *OpenAIProvider) doRequest(httpReq *http.Request, debug bool) (*ImageResult, error) {
	start := time.Now()
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[openai] %d, %d bytes in %s\n", resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var parsed openaiResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
		}
		return nil, apiErr
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body), Message: apiResp.Error.Message}
	}

	if debug && apiResp.Usage != nil {
		fmt.Fprintf(os.Stderr, "[openai] usage: %d input, %d output tokens\n", apiResp.Usage.InputTokens, apiResp.Usage.OutputTokens)
	}

	if len(apiResp.Data) == 0 {
		return nil, ErrNoImageData
	}
	first := apiResp.Data[0]

	// Try base64 data first
	if first.B64JSON != "" {
		imageData, err := decodeBase64Image(first.B64JSON)
		if err != nil {
			return nil, err
		}
		return &ImageResult{
			Data:          imageData,
			MimeType:      sniffMimeType(imageData),
			RevisedPrompt: first.RevisedPrompt,
		}, nil
	}

	// Fall back to URL
	if first.URL != "" {
		imageData, err := fetchImageURL(httpReq.Context(), p.httpClient, first.URL)
		if err != nil {
			return nil, err
		}
		return &ImageResult{
			Data:          imageData,
			MimeType:      sniffMimeType(imageData),
			RevisedPrompt: first.RevisedPrompt,
		}, nil
	}

	return nil, ErrMissingImage
}

// decodeBase64Image decodes b64_json, tolerating a data URL prefix.
func decodeBase64Image(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, rest, ok := strings.Cut(s, ","); ok {
			s = rest
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

// fetchImageURL downloads an image referenced by URL in a response.
func fetchImageURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeBase64Image(url)
	}
	fetchReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image URL request: %w", err)
	}
	resp, err := client.Do(fetchReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image URL: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("image URL returned status %d: %s", resp.StatusCode, string(body))
	}
	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image from URL: %w", err)
	}
	return imageData, nil
}

// openInput returns a reader over the request's image.
func openInput(req EditRequest) (io.ReadCloser, error) {
	if req.InputData != nil {
		return io.NopCloser(bytes.NewReader(req.InputData)), nil
	}
	f, err := os.Open(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input image: %w", err)
	}
	return f, nil
}

func inputFilename(path string) string {
	if path == "" {
		return "image.png"
	}
	return filepath.Base(path)
}

// OpenAI API types
type openaiGenerateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size,omitempty"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type openaiResponse struct {
	Created int64             `json:"created,omitempty"`
	Data    []openaiImageData `json:"data"`
	Usage   *openaiUsage      `json:"usage,omitempty"`
	Error   *openaiError      `json:"error,omitempty"`
}

type openaiImageData struct {
	B64JSON       string `json:"b64_json,omitempty"`
	URL           string `json:"url,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type openaiUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

type openaiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// openaiSizeFromAspectRatio maps a normalized aspect ratio to an OpenAI size string.
// gpt-image-1 only supports three sizes: 1024x1024, 1536x1024 (3:2), 1024x1536 (2:3).
// Landscape ratios (16:9, 4:3) are approximated to 3:2, portrait (9:16, 3:4) to 2:3.
func openaiSizeFromAspectRatio(ar string) string {
	switch ar {
	case "16:9", "3:2", "4:3":
		return "1536x1024"
	case "9:16", "2:3", "3:4":
		return "1024x1536"
	default:
		return "1024x1024"
	}
}
