// Package extractor is the concrete Extractor dispatch table, keyed on
// domain.FileType rather than a content-sniffing chain. Adapted from the
// internal/normalisers packages.
package extractor

import (
	"fmt"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

var _ driven.Extractor = (*DispatchTable)(nil)

// DispatchTable implements driven.Extractor by matching on file_type.
// Unsupported types (Image, Other, and Pdf until a PDF parser is wired)
// return an empty result rather than an error.
type DispatchTable struct {
	text driven.Extractor
	md   driven.Extractor
	docx driven.Extractor
}

// New builds the default dispatch table.
func New() *DispatchTable {
	return &DispatchTable{
		text: plaintextExtractor{},
		md:   markdownExtractor{},
		docx: docxExtractor{},
	}
}

// Extract implements driven.Extractor.
func (d *DispatchTable) Extract(path string, ft domain.FileType) (driven.ExtractResult, error) {
	switch ft {
	case domain.FileTypeText, domain.FileTypeCode:
		return d.text.Extract(path, ft)
	case domain.FileTypeMarkdown:
		return d.md.Extract(path, ft)
	case domain.FileTypeDocx:
		return d.docx.Extract(path, ft)
	case domain.FileTypePdf, domain.FileTypeImage, domain.FileTypeOther:
		// No PDF parser exists in the dependency stack; images are
		// represented via the cross-modal encoder instead of text
		// extraction. Both return an empty result rather than an error.
		return driven.ExtractResult{}, nil
	default:
		return driven.ExtractResult{}, nil
	}
}

func wrapIOErr(path string, err error) error {
	return fmt.Errorf("read %s: %w", path, domain.ErrIO)
}

func wrapExtractErr(path string, err error) error {
	return fmt.Errorf("extract %s: %w: %v", path, domain.ErrExtract, err)
}
