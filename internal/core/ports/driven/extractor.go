package driven

import "github.com/localsearch/filesearch/internal/core/domain"

// ExtractResult holds extracted body text plus an optional detected
// language.
type ExtractResult struct {
	Text     string
	Language string // empty means unknown
}

// Extractor is the single capability the core consumes abstractly; concrete
// implementations live in internal/extractor and are selected by a dispatch
// table keyed on FileType. Unsupported file types return an empty
// ExtractResult, not an error.
type Extractor interface {
	Extract(path string, ft domain.FileType) (ExtractResult, error)
}

// PrivacyFilter is the discovery-time policy object. ShouldIndex is
// consulted once per entry during the walk.
type PrivacyFilter interface {
	ShouldIndex(path string, isDir bool) bool
}
