package extractor

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

// docxExtractor reads word/document.xml out of the DOCX zip container,
// adapted from internal/normalisers/docx's Normalise.
type docxExtractor struct{}

func (docxExtractor) Extract(path string, _ domain.FileType) (driven.ExtractResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return driven.ExtractResult{}, wrapIOErr(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return driven.ExtractResult{}, wrapIOErr(path, err)
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return driven.ExtractResult{}, wrapExtractErr(path, err)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return driven.ExtractResult{}, wrapExtractErr(path, err)
	}
	return driven.ExtractResult{Text: text}, nil
}

func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return parseDocumentXML(content), nil
	}
	return "", nil
}

type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxTextElement `xml:"t"`
}

type docxTextElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(result.String())
}
