// Package file is the config adapter: a TOML-backed typed Config that
// names every field the engine actually needs, rather than a flattened
// key-value map.
package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// EmbeddingBackendConfig names the HTTP backend the Embedder talks to.
type EmbeddingBackendConfig struct {
	Kind    string `toml:"kind"` // "ollama", "openai", or "clip"
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Config is the full set of user-configurable knobs, loaded from
// ~/.file-search/config.toml by default. CLI flags
// (internal/adapters/driving/cli) override some of these per run.
type Config struct {
	IndexDir       string                 `toml:"index_dir"`
	Roots          []string               `toml:"roots"`
	ExcludeGlobs   []string               `toml:"exclude_globs"`
	KeywordWeight  float64                `toml:"keyword_weight"`
	MaxFileBytes   int64                  `toml:"max_file_bytes"`
	Semantic       bool                   `toml:"semantic"`
	TextBackend    EmbeddingBackendConfig `toml:"text_backend"`
	ImageBackend   EmbeddingBackendConfig `toml:"image_backend"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	home, _ := os.UserHomeDir()
	indexDir := filepath.Join(home, ".file-search")
	return Config{
		IndexDir:      indexDir,
		ExcludeGlobs:  []string{".git", ".ssh", ".gnupg", "node_modules", "target", "passwords", "*.key", "*.pem"},
		KeywordWeight: 0.5,
		MaxFileBytes:  50 * 1024 * 1024,
		Semantic:      false,
		TextBackend: EmbeddingBackendConfig{
			Kind:    "ollama",
			BaseURL: "http://localhost:11434",
			Model:   "nomic-embed-text",
		},
		ImageBackend: EmbeddingBackendConfig{
			Kind:    "clip",
			BaseURL: "http://localhost:8008",
			Model:   "clip-vit-base-patch32",
		},
	}
}

// Store loads and persists Config to a single TOML file, guarding the
// in-memory copy with a mutex so concurrent readers see a consistent
// snapshot while a save is in flight.
type Store struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config
}

// NewStore opens (or lazily creates on first Save) the config file under
// configDir. If configDir is empty, defaults to ~/.file-search/config.toml.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".file-search")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		cfg:      Default(),
	}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Config returns a copy of the current in-memory configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the in-memory configuration. Call Save to persist.
func (s *Store) Set(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Save persists the current configuration to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads the configuration file, leaving defaults in place for any
// field the file doesn't set.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}
