package driven

import "context"

// EmbeddingBackend is the "run model" step of the Embedder: it turns
// already-tokenized or already-preprocessed input into a raw (not yet
// normalized) float32 vector. Concrete backends talk to an Ollama-style,
// OpenAI-style, or CLIP-serving HTTP endpoint.
type EmbeddingBackend interface {
	// EmbedText runs the text encoder over already-assembled input
	// (the tokenizer's job happens upstream in internal/embedder) and
	// returns the raw vector before pooling/normalization.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedImage runs the cross-modal image encoder over an already
	// preprocessed image: the 3x224x224 CHW float32 tensor serialized as
	// little-endian bytes.
	EmbedImage(ctx context.Context, imageBytes []byte) ([]float32, error)

	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}
