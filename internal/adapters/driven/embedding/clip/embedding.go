// Package clip implements an EmbeddingBackend against a CLIP-serving HTTP
// endpoint (/embed/image, /embed/text), for the 512-dim cross-modal family.
// Same Config/Ping/Close shape as the ollama/openai text backends.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

var _ driven.EmbeddingBackend = (*Backend)(nil)

const (
	DefaultBaseURL    = "http://localhost:8008"
	DefaultModel      = "clip-vit-base-patch32"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 512
)

// Config holds the HTTP backend's connection settings.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// Backend calls a CLIP-serving endpoint for both image and text sides of
// the cross-modal encoder.
type Backend struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

type textRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type imageRequest struct {
	Model    string `json:"model"`
	ImageB64 string `json:"image_base64"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// New creates a new CLIP-backed EmbeddingBackend.
func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &Backend{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedText implements driven.EmbeddingBackend, calling the CLIP text
// tower. Input is expected to already be tokenizer-ready text (77-token
// truncation happens in internal/embedder before this call).
func (b *Backend) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody := textRequest{Model: b.model, Text: text}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", domain.ErrEncode)
	}
	return b.post(ctx, "/embed/text", jsonBody)
}

// EmbedImage implements driven.EmbeddingBackend, calling the CLIP image
// tower. imageBytes is expected to already be preprocessed (224x224,
// per-channel normalized) by internal/embedder; it is base64-encoded here
// only for JSON transport.
func (b *Backend) EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error) {
	reqBody := imageRequest{Model: b.model, ImageB64: base64.StdEncoding.EncodeToString(imageBytes)}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", domain.ErrEncode)
	}
	return b.post(ctx, "/embed/image", jsonBody)
}

func (b *Backend) post(ctx context.Context, route string, jsonBody []byte) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+route, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", domain.ErrEncode)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", domain.ErrEncode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("clip error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrEncode)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", domain.ErrEncode)
	}
	out := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

// Dimensions implements driven.EmbeddingBackend.
func (b *Backend) Dimensions() int { return b.dimensions }

// ModelName implements driven.EmbeddingBackend.
func (b *Backend) ModelName() string { return b.model }

// Ping implements driven.EmbeddingBackend.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("clip: create ping request: %w", domain.ErrModelLoad)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("clip: ping failed: %w", domain.ErrModelLoad)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("clip: API returned status %d: %s: %w", resp.StatusCode, string(body), domain.ErrModelLoad)
	}
	return nil
}

// Close implements driven.EmbeddingBackend.
func (b *Backend) Close() error { return nil }
