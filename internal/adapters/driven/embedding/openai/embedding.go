// Package openai implements an EmbeddingBackend against an
// OpenAI-compatible /v1/embeddings endpoint, adapted in the same shape as
// the ollama backend.
package openai

import (
	"bytes"
	"context"
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
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "text-embedding-3-small"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 384
)

// Config holds the HTTP backend's connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// Backend calls an OpenAI-compatible embeddings endpoint.
type Backend struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// New creates a new OpenAI-backed EmbeddingBackend.
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
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedText implements driven.EmbeddingBackend.
func (b *Backend) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{Model: b.model, Input: text}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", domain.ErrEncode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", domain.ErrEncode)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", domain.ErrEncode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrEncode)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", domain.ErrEncode)
	}
	if len(embedResp.Data) == 0 {
		return nil, fmt.Errorf("openai: empty embedding response: %w", domain.ErrEncode)
	}

	raw := embedResp.Data[0].Embedding
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedImage implements driven.EmbeddingBackend. This text-embedding
// endpoint has no image route.
func (b *Backend) EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error) {
	return nil, fmt.Errorf("openai text backend has no image encoder: %w", domain.ErrModelLoad)
}

// Dimensions implements driven.EmbeddingBackend.
func (b *Backend) Dimensions() int { return b.dimensions }

// ModelName implements driven.EmbeddingBackend.
func (b *Backend) ModelName() string { return b.model }

// Ping implements driven.EmbeddingBackend.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", domain.ErrModelLoad)
	}
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", domain.ErrModelLoad)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: API returned status %d: %s: %w", resp.StatusCode, string(body), domain.ErrModelLoad)
	}
	return nil
}

// Close implements driven.EmbeddingBackend.
func (b *Backend) Close() error { return nil }
