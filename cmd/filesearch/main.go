// Command filesearch indexes files on disk and searches them by keyword,
// meaning, or both, entirely offline.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/localsearch/filesearch/internal/adapters/driven/config/file"
	"github.com/localsearch/filesearch/internal/adapters/driven/embedding/clip"
	"github.com/localsearch/filesearch/internal/adapters/driven/embedding/ollama"
	"github.com/localsearch/filesearch/internal/adapters/driven/embedding/openai"
	"github.com/localsearch/filesearch/internal/adapters/driven/search/ftsindex"
	"github.com/localsearch/filesearch/internal/adapters/driven/storage/sqlite"
	"github.com/localsearch/filesearch/internal/adapters/driven/vectorstore"
	"github.com/localsearch/filesearch/internal/adapters/driving/cli"
	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
	"github.com/localsearch/filesearch/internal/core/services"
	"github.com/localsearch/filesearch/internal/embedder"
	"github.com/localsearch/filesearch/internal/extractor"
	"github.com/localsearch/filesearch/internal/fingerprint"
	"github.com/localsearch/filesearch/internal/privacyfilter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "filesearch:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgStore, err := file.NewStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := cfgStore.Config()

	if err := os.MkdirAll(cfg.IndexDir, 0o700); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	metadata, err := sqlite.NewStore(filepath.Join(cfg.IndexDir, "db.sqlite"))
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer metadata.Close()

	invertedIdx, err := ftsindex.New(filepath.Join(cfg.IndexDir, "tantivy"))
	if err != nil {
		return fmt.Errorf("open inverted index: %w", err)
	}
	defer invertedIdx.Close()

	textBackend, err := buildBackend(cfg.TextBackend)
	if err != nil {
		return fmt.Errorf("configure text backend: %w", err)
	}
	imageBackend, err := buildBackend(cfg.ImageBackend)
	if err != nil {
		return fmt.Errorf("configure image backend: %w", err)
	}

	textEncoder := embedder.NewTextEncoder(textBackend)
	crossModalEncoder := embedder.NewCrossModalEncoder(imageBackend)

	textVectors := vectorstore.New(textEncoder.Dim())
	imageVectors := vectorstore.New(crossModalEncoder.Dim())

	textSnapshot := filepath.Join(cfg.IndexDir, "vectors.json")
	imageSnapshot := filepath.Join(cfg.IndexDir, "image_vectors.json")
	if err := loadIfExists(textVectors, textSnapshot); err != nil {
		return fmt.Errorf("load text vector snapshot: %w", err)
	}
	if err := loadIfExists(imageVectors, imageSnapshot); err != nil {
		return fmt.Errorf("load image vector snapshot: %w", err)
	}

	privacy := privacyfilter.New(cfg.ExcludeGlobs)

	// Encoders and vector stores are always wired; whether a given index
	// run actually embeds anything is controlled per-run by
	// IndexOptions.Semantic (the --semantic flag, defaulted from
	// cfg.Semantic below).
	ingestor := services.New(
		metadata, invertedIdx,
		textVectors, imageVectors,
		extractor.New(),
		fingerprint.Default{},
		privacy,
		textEncoder, crossModalEncoder,
		textSnapshot, imageSnapshot,
	)

	searcher := services.NewSearcher(
		metadata, invertedIdx,
		textVectors, imageVectors,
		textEncoder, crossModalEncoder,
	)

	cli.Init(ingestor, searcher, metadata.Stats, cfg.MaxFileBytes, cfg.KeywordWeight, cfg.Semantic)
	return cli.Execute()
}

// buildBackend selects a concrete EmbeddingBackend by kind.
func buildBackend(cfg file.EmbeddingBackendConfig) (driven.EmbeddingBackend, error) {
	switch cfg.Kind {
	case "openai":
		return openai.New(openai.Config{BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	case "clip":
		return clip.New(clip.Config{BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	case "ollama", "":
		return ollama.New(ollama.Config{BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend kind %q: %w", cfg.Kind, domain.ErrInvalidInput)
	}
}

func loadIfExists(store *vectorstore.Store, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return store.Load(path)
}
