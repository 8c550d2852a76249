// Package fingerprint computes stable content hashes and file-type
// classification for the Ingestor's discovery and upsert steps.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/localsearch/filesearch/internal/core/domain"
)

// chunkSize bounds each read during hashing to at most 64 KiB.
const chunkSize = 64 * 1024

// Hash computes a 32-byte SHA-256 over the file at path, rendered as 64
// lowercase hex characters. Reads in bounded chunks; any read failure is
// reported wrapped in domain.ErrIO.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, domain.ErrIO)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return "", fmt.Errorf("hash %s: %w", path, domain.ErrIO)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("read %s: %w", path, domain.ErrIO)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Classify implements the Fingerprinter's classification precedence:
// extension, then sniffed magic, then other. It takes no caller-supplied
// MIME hint; the returned mimeType is the sniffed type, empty when the
// extension decided.
func Classify(path string) (ft domain.FileType, mimeType string, err error) {
	ext := filepath.Ext(path)
	if t, ok := domain.ClassifyExtension(ext); ok {
		return t, "", nil
	}

	f, oerr := os.Open(path)
	if oerr != nil {
		return domain.FileTypeOther, "", fmt.Errorf("open %s: %w", path, domain.ErrIO)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, rerr := f.Read(head)
	if rerr != nil && rerr != io.EOF {
		return domain.FileTypeOther, "", fmt.Errorf("sniff %s: %w", path, domain.ErrIO)
	}
	sniffed := http.DetectContentType(head[:n])
	mimeType = sniffed

	switch {
	case matchesPrefix(sniffed, "image/"):
		return domain.FileTypeImage, mimeType, nil
	case matchesPrefix(sniffed, "text/"):
		return domain.FileTypeText, mimeType, nil
	case sniffed == "application/pdf":
		return domain.FileTypePdf, mimeType, nil
	default:
		return domain.FileTypeOther, mimeType, nil
	}
}

func matchesPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Default adapts the package-level Hash/Classify functions to an interface
// value callers can wire into a service constructor.
type Default struct{}

func (Default) Hash(path string) (string, error) { return Hash(path) }

func (Default) Classify(path string) (domain.FileType, string, error) { return Classify(path) }
