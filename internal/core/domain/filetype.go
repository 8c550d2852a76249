package domain

import "strings"

// FileType is the closed tagged variant the schema stores as text.
// Unknown strings read back from storage tolerate to Other; writers are
// restricted to the canonical set by construction (ClassifyExtension never
// returns an out-of-set value).
type FileType string

const (
	FileTypeText     FileType = "text"
	FileTypeCode     FileType = "code"
	FileTypeMarkdown FileType = "markdown"
	FileTypePdf      FileType = "pdf"
	FileTypeDocx     FileType = "docx"
	FileTypeImage    FileType = "image"
	FileTypeOther    FileType = "other"
)

// ParseFileType is the tolerant read-side conversion: unrecognized strings
// map to Other rather than erroring, matching the closed-tagged-variant's
// read/write asymmetry.
func ParseFileType(s string) FileType {
	switch FileType(s) {
	case FileTypeText, FileTypeCode, FileTypeMarkdown, FileTypePdf, FileTypeDocx, FileTypeImage, FileTypeOther:
		return FileType(s)
	default:
		return FileTypeOther
	}
}

var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".rs": true, ".js": true, ".ts": true,
	".tsx": true, ".jsx": true, ".java": true, ".c": true, ".h": true,
	".cpp": true, ".cc": true, ".hpp": true, ".cs": true, ".rb": true,
	".php": true, ".sh": true, ".bash": true, ".zsh": true, ".sql": true,
	".yaml": true, ".yml": true, ".toml": true, ".json": true, ".proto": true,
	".swift": true, ".kt": true, ".scala": true, ".lua": true,
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".webp": true, ".tiff": true,
}

// ClassifyExtension implements the Fingerprinter's classification
// precedence's first tier: extension lookup. Callers fall through to magic
// sniffing and finally Other when this returns "", false.
func ClassifyExtension(ext string) (FileType, bool) {
	ext = strings.ToLower(ext)
	switch ext {
	case ".txt", ".text", ".log":
		return FileTypeText, true
	case ".md", ".markdown":
		return FileTypeMarkdown, true
	case ".pdf":
		return FileTypePdf, true
	case ".docx":
		return FileTypeDocx, true
	}
	if codeExtensions[ext] {
		return FileTypeCode, true
	}
	if imageExtensions[ext] {
		return FileTypeImage, true
	}
	// Xlsx and Archive have no dedicated variant in the closed set, so
	// they fall through to sniffing/Other rather than gaining a tag.
	return "", false
}
