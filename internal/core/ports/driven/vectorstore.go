package driven

// VectorStore is a fixed-dimension dense vector store with cosine
// similarity nearest-neighbor queries. Implementations are
// single-writer, many-reader and persist as an atomic snapshot file.
type VectorStore interface {
	Dim() int

	// Upsert asserts len(vector) == Dim(), L2-normalizes if needed, and
	// returns an opaque integer handle. Replaces and reuses the handle if
	// a vector already exists for fileID.
	Upsert(fileID int64, vector []float32) (vectorID int, err error)

	// Remove is idempotent.
	Remove(vectorID int) error

	// Search asserts len(queryVector) == Dim() and norm ≈ 1. Ties are
	// broken by ascending vector_id.
	Search(queryVector []float32, k int) ([]VectorHit, error)

	// Save writes an atomic snapshot (tmp file then rename).
	Save(path string) error

	// Load replaces the store's contents from a snapshot, rejecting a
	// dimension mismatch with domain.ErrDimensionMismatch without
	// mutating the receiver.
	Load(path string) error

	// Len reports the number of live entries. MetadataStore.Stats does not
	// include it.
	Len() int

	// VectorIDs returns every live vector id, in no particular order. No
	// service calls it.
	VectorIDs() []int
}

// VectorHit is one ranked result from VectorStore.Search.
type VectorHit struct {
	FileID     int64
	VectorID   int
	Similarity float64
}
