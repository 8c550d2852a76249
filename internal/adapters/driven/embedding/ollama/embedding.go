// Package ollama implements an EmbeddingBackend against an Ollama-style
// /api/embeddings endpoint.
package ollama

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
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 384
)

// Config holds the HTTP backend's connection settings.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// Backend calls an Ollama-compatible embeddings endpoint.
type Backend struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// New creates a new Ollama-backed EmbeddingBackend.
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

// EmbedText implements driven.EmbeddingBackend.
func (b *Backend) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{Model: b.model, Prompt: text}
	return b.post(ctx, "/api/embeddings", reqBody)
}

// EmbedImage implements driven.EmbeddingBackend. Ollama's text-embedding
// API has no image route; an image request against this backend is a
// model mismatch, reported as a load error rather than a runtime one.
func (b *Backend) EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error) {
	return nil, fmt.Errorf("ollama backend has no image encoder: %w", domain.ErrModelLoad)
}

func (b *Backend) post(ctx context.Context, route string, reqBody embedRequest) ([]float32, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", domain.ErrEncode)
	}

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
		return nil, fmt.Errorf("ollama error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrEncode)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", domain.ErrEncode)
	}

	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// Dimensions implements driven.EmbeddingBackend.
func (b *Backend) Dimensions() int { return b.dimensions }

// ModelName implements driven.EmbeddingBackend.
func (b *Backend) ModelName() string { return b.model }

// Ping implements driven.EmbeddingBackend.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: create ping request: %w", domain.ErrModelLoad)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", domain.ErrModelLoad)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama: API returned status %d: %s: %w", resp.StatusCode, string(body), domain.ErrModelLoad)
	}
	return nil
}

// Close implements driven.EmbeddingBackend.
func (b *Backend) Close() error { return nil }
