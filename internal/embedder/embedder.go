// Package embedder implements two encoder families on top of a pluggable
// driven.EmbeddingBackend: a 384-dim text encoder and a 512-dim
// cross-modal CLIP-style pair. Both sides are read-only once constructed
// and safe for concurrent Encode*/EncodeBatch calls.
package embedder

import (
	"context"
	"fmt"
	"os"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

// CLIP text preprocessing budget: max 77 tokens.
const clipTextMaxTokens = 77

// TextEncoder is the 384-dim sentence encoder: tokenize, run model,
// mean-pool (delegated to the backend, which returns one pooled vector
// per call — see meanPool in math.go), L2-normalize.
type TextEncoder struct {
	backend driven.EmbeddingBackend
}

// NewTextEncoder wraps a backend already loaded/pinged by the caller.
func NewTextEncoder(backend driven.EmbeddingBackend) *TextEncoder {
	return &TextEncoder{backend: backend}
}

func (e *TextEncoder) Dim() int { return e.backend.Dimensions() }

// Encode implements the text encoder's single-input operation.
func (e *TextEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	truncated, _, err := truncateToTokenBudget(text, textMaxTokens)
	if err != nil {
		return nil, err
	}
	raw, err := e.backend.EmbedText(ctx, truncated)
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	return l2Normalize(raw), nil
}

// EncodeBatch implements the text encoder's batch operation.
func (e *TextEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Encode(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("encode batch item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// CrossModalEncoder is the 512-dim CLIP-style pair: EncodeImage and
// EncodeTextForImages share one embedding space.
type CrossModalEncoder struct {
	backend driven.EmbeddingBackend
}

// NewCrossModalEncoder wraps a backend already loaded/pinged by the caller.
func NewCrossModalEncoder(backend driven.EmbeddingBackend) *CrossModalEncoder {
	return &CrossModalEncoder{backend: backend}
}

func (e *CrossModalEncoder) Dim() int { return e.backend.Dimensions() }

// EncodeImage decodes, preprocesses (resize/normalize/CHW) and embeds an
// image file.
func (e *CrossModalEncoder) EncodeImage(ctx context.Context, path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, domain.ErrIO)
	}
	tensor, err := preprocessImage(raw)
	if err != nil {
		return nil, fmt.Errorf("preprocess image %s: %w", path, err)
	}
	vec, err := e.backend.EmbedImage(ctx, serializeTensor(tensor))
	if err != nil {
		return nil, fmt.Errorf("encode image %s: %w", path, err)
	}
	return l2Normalize(vec), nil
}

// EncodeTextForImages embeds a text query into the image embedding space,
// truncating to CLIP's 77-token budget. SOT/EOT bracketing is the CLIP
// tokenizer's concern; the cl100k_base stand-in here truncates by length,
// matching the pipeline's shape rather than CLIP's exact BPE vocabulary
// (no CLIP tokenizer dependency is available).
func (e *CrossModalEncoder) EncodeTextForImages(ctx context.Context, text string) ([]float32, error) {
	truncated, _, err := truncateToTokenBudget(text, clipTextMaxTokens)
	if err != nil {
		return nil, err
	}
	raw, err := e.backend.EmbedText(ctx, truncated)
	if err != nil {
		return nil, fmt.Errorf("encode text for images: %w", err)
	}
	return l2Normalize(raw), nil
}
