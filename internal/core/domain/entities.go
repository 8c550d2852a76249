package domain

// FileRecord is the relational MetadataStore's row for one indexed file.
// file_id is assigned on first insert; path is the secondary unique key
// ingestion upserts on.
type FileRecord struct {
	FileID     int64
	Path       string
	Filename   string
	FileType   FileType
	MimeType   string // empty means unset
	SizeBytes  int64
	Hash       string // SHA-256 hex, 64 lowercase chars
	CreatedAt  int64  // unix seconds
	ModifiedAt int64
	IndexedAt  int64
}

// ContentRecord is 1:1 with FileRecord by file_id, holding extracted text.
type ContentRecord struct {
	FileID    int64
	Text      string
	WordCount int
	Language  string // empty means unknown
}

// VectorType distinguishes the two embedding families a VectorRef can
// point into.
type VectorType string

const (
	VectorTypeText  VectorType = "text"
	VectorTypeImage VectorType = "image"
)

// VectorRef is the MetadataStore's backreference from a file into a
// VectorStore entry. Identity is (FileID, VectorType, ChunkIndex).
type VectorRef struct {
	FileID     int64
	VectorType VectorType
	VectorID   int
	ChunkIndex int // always 0 until a multi-chunk splitter is added
}

// OrphanedVectors groups vector ids orphaned by a delete_file call, split
// by vector type so the caller can route each set to the right VectorStore.
type OrphanedVectors struct {
	TextVectorIDs  []int
	ImageVectorIDs []int
}

// Stats is MetadataStore.stats()'s return shape: a file-type breakdown
// and byte totals alongside the indexed-file count.
type Stats struct {
	TotalFiles   int
	TotalBytes   int64
	ByFileType   map[FileType]int
	IndexedFiles int // files with a non-empty ContentRecord
}

// SearchSource tags which backend produced a SearchHit.
type SearchSource string

const (
	SourceKeyword  SearchSource = "keyword"
	SourceSemantic SearchSource = "semantic"
	SourceHybrid   SearchSource = "hybrid"
	SourceImage    SearchSource = "image"
)

// SearchHit is a raw ranked result before hydration.
type SearchHit struct {
	FileID int64
	Score  float64
	Source SearchSource
}

// SearchResult is a SearchHit hydrated with MetadataStore fields. Preview
// is a short excerpt, populated by the caller from ContentRecord.Text when
// available.
type SearchResult struct {
	FileID   int64        `json:"file_id"`
	Score    float64      `json:"score"`
	Source   SearchSource `json:"source"`
	Path     string       `json:"path"`
	Filename string       `json:"filename"`
	FileType FileType     `json:"file_type"`
	Preview  string       `json:"preview"`
}

// DiscoveredFile is what the Ingestor's discovery walk emits per entry that
// passes the PrivacyFilter.
type DiscoveredFile struct {
	Path     string
	FileType FileType
}

// IndexOptions configures one Ingestor.Index call.
type IndexOptions struct {
	RunID    string // opaque uuid, for log correlation
	Semantic bool   // embed text/images in addition to keyword indexing
	Prune    bool   // reap FileRecords under root not visited this run
	MaxBytes int64  // files larger than this are skipped during discovery
}

// IndexReport is the summary Ingestor.Index always returns, even on
// partial failure.
type IndexReport struct {
	RunID   string
	Indexed int
	Skipped int
	Failed  int
	Pruned  int
}
