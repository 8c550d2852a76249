package extractor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

// plaintextExtractor handles Text and Code files: the body is the raw
// file content, used unchanged. Adapted from internal/normalisers/
// plaintext's Normalise into the Extract(path, file_type) contract.
// .html/.htm files route to htmlExtractor first, since the closed
// FileType set has no dedicated "html" tag.
type plaintextExtractor struct{}

func (plaintextExtractor) Extract(path string, ft domain.FileType) (driven.ExtractResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		return htmlExtractor{}.Extract(path, ft)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return driven.ExtractResult{}, wrapIOErr(path, err)
	}
	return driven.ExtractResult{Text: string(content)}, nil
}
