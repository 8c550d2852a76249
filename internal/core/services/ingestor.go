package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
	"github.com/localsearch/filesearch/internal/core/ports/driving"
	"github.com/localsearch/filesearch/internal/logger"
)

var _ driving.Ingestor = (*Ingestor)(nil)

// Fingerprinter is the subset of internal/fingerprint the Ingestor needs.
type Fingerprinter interface {
	Hash(path string) (string, error)
	Classify(path string) (domain.FileType, string, error)
}

// PrivacyFilter is the discovery-time policy consulted once per entry,
// with LoadGitignore accumulating patterns as the walk descends.
type PrivacyFilter interface {
	ShouldIndex(path string, isDir bool) bool
	LoadGitignore(dir string)
}

// TextImageEncoder is the subset of internal/embedder's TextEncoder the
// Ingestor needs for step 2g (embedding extracted text).
type TextImageEncoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// ImageEncoder is the subset of internal/embedder's CrossModalEncoder the
// Ingestor needs for step 2h (embedding image files).
type ImageEncoder interface {
	EncodeImage(ctx context.Context, path string) ([]float32, error)
}

// Ingestor implements driving.Ingestor: discover, fingerprint, extract,
// upsert across the three stores, optional embed, reap, commit.
type Ingestor struct {
	metadata      driven.MetadataStore
	invertedIdx   driven.InvertedIndex
	textVectors   driven.VectorStore
	imageVectors  driven.VectorStore
	extractor     driven.Extractor
	fingerprint   Fingerprinter
	privacy       PrivacyFilter
	textEncoder   TextImageEncoder
	imageEncoder  ImageEncoder
	textSnapshot  string
	imageSnapshot string
}

// New wires the collaborators. textVectors/imageVectors/textEncoder/
// imageEncoder/snapshot paths may be left zero-valued when semantic mode
// is never requested.
func New(
	metadata driven.MetadataStore,
	invertedIdx driven.InvertedIndex,
	textVectors driven.VectorStore,
	imageVectors driven.VectorStore,
	extractor driven.Extractor,
	fingerprint Fingerprinter,
	privacy PrivacyFilter,
	textEncoder TextImageEncoder,
	imageEncoder ImageEncoder,
	textSnapshotPath string,
	imageSnapshotPath string,
) *Ingestor {
	return &Ingestor{
		metadata:      metadata,
		invertedIdx:   invertedIdx,
		textVectors:   textVectors,
		imageVectors:  imageVectors,
		extractor:     extractor,
		fingerprint:   fingerprint,
		privacy:       privacy,
		textEncoder:   textEncoder,
		imageEncoder:  imageEncoder,
		textSnapshot:  textSnapshotPath,
		imageSnapshot: imageSnapshotPath,
	}
}

// Index implements driving.Ingestor.
func (ig *Ingestor) Index(ctx context.Context, root string, opts domain.IndexOptions) (domain.IndexReport, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	report := domain.IndexReport{RunID: runID}
	logger.Section("Index")
	logger.Info("run=%s root=%s semantic=%t prune=%t", runID, root, opts.Semantic, opts.Prune)

	root = filepath.Clean(root)
	visited := make(map[string]struct{})

	discovered, err := ig.discover(root, opts)
	if err != nil {
		return report, fmt.Errorf("discover: %w", err)
	}

	for _, df := range discovered {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		visited[df.Path] = struct{}{}
		skipped, err := ig.indexOne(ctx, df, opts)
		if err != nil {
			report.Failed++
			logger.Warn("index %s: %v", df.Path, err)
			continue
		}
		if skipped {
			report.Skipped++
			continue
		}
		report.Indexed++
	}

	if opts.Prune {
		pruned, err := ig.reap(ctx, root, visited)
		if err != nil {
			return report, fmt.Errorf("reap: %w", err)
		}
		report.Pruned = pruned
	}

	if err := ig.commit(ctx); err != nil {
		return report, fmt.Errorf("commit: %w", err)
	}

	logger.Info("run=%s indexed=%d skipped=%d failed=%d pruned=%d",
		runID, report.Indexed, report.Skipped, report.Failed, report.Pruned)
	return report, nil
}

// discover walks root depth-first, consulting PrivacyFilter at each entry
// and loading any .gitignore found so its patterns apply to descendants.
func (ig *Ingestor) discover(root string, opts domain.IndexOptions) ([]domain.DiscoveredFile, error) {
	var out []domain.DiscoveredFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			ig.privacy.LoadGitignore(path)
			if path != root && !ig.privacy.ShouldIndex(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !ig.privacy.ShouldIndex(path, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("stat %s: %v", path, err)
			return nil
		}
		if opts.MaxBytes > 0 && info.Size() > opts.MaxBytes {
			return nil
		}

		ft, _, err := ig.fingerprint.Classify(path)
		if err != nil {
			logger.Warn("classify %s: %v", path, err)
			return nil
		}
		out = append(out, domain.DiscoveredFile{Path: path, FileType: ft})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// indexOne runs steps 2a-2h of the index algorithm for one discovered
// file. The returned bool reports whether the file was skipped via the
// unchanged-hash fast path.
func (ig *Ingestor) indexOne(ctx context.Context, df domain.DiscoveredFile, opts domain.IndexOptions) (bool, error) {
	info, err := os.Stat(df.Path)
	if err != nil {
		return false, fmt.Errorf("stat: %w", domain.ErrIO)
	}

	hash, err := ig.fingerprint.Hash(df.Path)
	if err != nil {
		return false, fmt.Errorf("hash: %w", err)
	}

	now := time.Now().Unix()
	rec := domain.FileRecord{
		Path:       df.Path,
		Filename:   filepath.Base(df.Path),
		FileType:   df.FileType,
		SizeBytes:  info.Size(),
		Hash:       hash,
		CreatedAt:  now,
		ModifiedAt: info.ModTime().Unix(),
		IndexedAt:  now,
	}
	fileID, fastPath, err := ig.metadata.UpsertFile(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("upsert_file: %w", err)
	}
	if fastPath {
		return true, nil
	}

	result, err := ig.extractor.Extract(df.Path, df.FileType)
	if err != nil {
		logger.Debug("extract %s: %v (indexing metadata only)", df.Path, err)
		result = driven.ExtractResult{}
	}

	wordCount := 0
	if result.Text != "" {
		wordCount = len(strings.Fields(result.Text))
	}
	if err := ig.metadata.UpsertContent(ctx, fileID, result.Text, wordCount, result.Language); err != nil {
		return false, fmt.Errorf("upsert_content: %w", err)
	}

	if err := ig.invertedIdx.UpsertDocument(ctx, fileID, df.Path, rec.Filename, result.Text); err != nil {
		return false, fmt.Errorf("upsert_document: %w", err)
	}

	if opts.Semantic && result.Text != "" && ig.textEncoder != nil && ig.textVectors != nil {
		if err := ig.embedText(ctx, fileID, result.Text); err != nil {
			logger.Debug("embed text %s: %v", df.Path, err)
		}
	}
	if opts.Semantic && df.FileType == domain.FileTypeImage && ig.imageEncoder != nil && ig.imageVectors != nil {
		if err := ig.embedImage(ctx, fileID, df.Path); err != nil {
			logger.Debug("embed image %s: %v", df.Path, err)
		}
	}

	return false, nil
}

func (ig *Ingestor) embedText(ctx context.Context, fileID int64, text string) error {
	vec, err := ig.textEncoder.Encode(ctx, text)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	vectorID, err := ig.textVectors.Upsert(fileID, vec)
	if err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	return ig.metadata.UpsertVector(ctx, fileID, domain.VectorTypeText, vectorID, 0)
}

func (ig *Ingestor) embedImage(ctx context.Context, fileID int64, path string) error {
	vec, err := ig.imageEncoder.EncodeImage(ctx, path)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	vectorID, err := ig.imageVectors.Upsert(fileID, vec)
	if err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	return ig.metadata.UpsertVector(ctx, fileID, domain.VectorTypeImage, vectorID, 0)
}

// reap deletes FileRecords under root not visited this run, propagating
// orphaned vector ids to the appropriate VectorStore.
func (ig *Ingestor) reap(ctx context.Context, root string, visited map[string]struct{}) (int, error) {
	existing, err := ig.metadata.ListUnderRoot(ctx, root)
	if err != nil {
		return 0, fmt.Errorf("list_under_root: %w", err)
	}

	pruned := 0
	for _, rec := range existing {
		if _, ok := visited[rec.Path]; ok {
			continue
		}
		orphans, err := ig.metadata.DeleteFile(ctx, rec.FileID)
		if err != nil {
			logger.Warn("reap delete %s: %v", rec.Path, err)
			continue
		}
		if ig.textVectors != nil {
			for _, id := range orphans.TextVectorIDs {
				_ = ig.textVectors.Remove(id)
			}
		}
		if ig.imageVectors != nil {
			for _, id := range orphans.ImageVectorIDs {
				_ = ig.imageVectors.Remove(id)
			}
		}
		if err := ig.invertedIdx.DeleteDocument(ctx, rec.FileID); err != nil {
			logger.Warn("reap delete document %s: %v", rec.Path, err)
		}
		pruned++
	}
	return pruned, nil
}

// commit flushes InvertedIndex then the text and image VectorStores, in
// that order: the order matters for crash recovery, since a committed
// inverted index with a stale vector snapshot is recoverable (vectors
// just lag), while the reverse is not.
func (ig *Ingestor) commit(ctx context.Context) error {
	if err := ig.invertedIdx.Commit(ctx); err != nil {
		return fmt.Errorf("inverted index commit: %w", err)
	}
	if ig.textVectors != nil && ig.textSnapshot != "" {
		if err := ig.textVectors.Save(ig.textSnapshot); err != nil {
			return fmt.Errorf("save text vectors: %w", err)
		}
	}
	if ig.imageVectors != nil && ig.imageSnapshot != "" {
		if err := ig.imageVectors.Save(ig.imageSnapshot); err != nil {
			return fmt.Errorf("save image vectors: %w", err)
		}
	}
	return nil
}

// Clear implements driving.Ingestor: deletes every FileRecord (cascading
// its content and VectorRef rows), removes the matching inverted-index
// documents and VectorStore entries, then commits the inverted index and
// saves both vector snapshots. The on-disk files stay in place, emptied
// rather than deleted.
func (ig *Ingestor) Clear(ctx context.Context) error {
	files, err := ig.metadata.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list_all: %w", err)
	}
	for _, rec := range files {
		orphans, err := ig.metadata.DeleteFile(ctx, rec.FileID)
		if err != nil {
			return fmt.Errorf("delete_file %d: %w", rec.FileID, err)
		}
		if ig.textVectors != nil {
			for _, id := range orphans.TextVectorIDs {
				_ = ig.textVectors.Remove(id)
			}
		}
		if ig.imageVectors != nil {
			for _, id := range orphans.ImageVectorIDs {
				_ = ig.imageVectors.Remove(id)
			}
		}
		if err := ig.invertedIdx.DeleteDocument(ctx, rec.FileID); err != nil {
			return fmt.Errorf("delete_document %d: %w", rec.FileID, err)
		}
	}
	if err := ig.commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
