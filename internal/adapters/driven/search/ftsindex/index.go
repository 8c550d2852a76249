// Package ftsindex implements InvertedIndex over an FTS5 virtual table in
// its own sqlite file, grounded on dshills-gocontext-mcp's migration
// trigger pattern and query sanitization/BM25 scoring helpers. Pure-Go
// sqlite avoids the CGO cross-compilation cost a native search library
// would carry.
package ftsindex

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/localsearch/filesearch/internal/adapters/driven/search/ftsindex/migrations"
	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

var _ driven.InvertedIndex = (*Index)(nil)

// bm25NormConst tunes how sharply the normalized score saturates toward
// 1.0 as raw BM25 goodness grows. Chosen so that typical multi-term
// matches land in the 0.6-0.9 range rather than clustering near 1.0.
const bm25NormConst = 50.0

// Index is the BM25 full-text engine. A single write mutex enforces
// single-writer-per-store; reads are concurrent.
type Index struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// New opens or creates the on-disk index under dir (the tantivy/
// directory convention), backed by dir/index.sqlite.
func New(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create index dir: %w", domain.ErrStore)
	}
	dbPath := filepath.Join(dir, "index.sqlite")
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, domain.ErrStore)
	}

	idx := &Index{db: db, path: dbPath}
	if err := idx.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) migrate(fsys embed.FS) error {
	if _, err := idx.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", domain.ErrStore)
	}

	var current int
	if err := idx.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", domain.ErrStore)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", domain.ErrStore)
	}
	type migFile struct {
		version int
		name    string
	}
	var files []migFile
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		v, err := strconv.Atoi(strings.SplitN(e.Name(), "_", 2)[0])
		if err != nil {
			continue
		}
		files = append(files, migFile{version: v, name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })

	for _, mf := range files {
		if mf.version <= current {
			continue
		}
		sqlBytes, err := fsys.ReadFile(mf.name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", mf.name, domain.ErrStore)
		}
		tx, err := idx.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", domain.ErrStore)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", mf.name, domain.ErrStore)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations(version, applied_at) VALUES (?, strftime('%s','now'))", mf.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", mf.name, domain.ErrStore)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", mf.name, domain.ErrStore)
		}
	}
	return nil
}

// UpsertDocument implements driven.InvertedIndex. A new file_id fires the
// docs_ai trigger; an existing one takes the ON CONFLICT DO UPDATE branch,
// which fires docs_au: delete-by-term then add against the fts5 mirror.
func (idx *Index) UpsertDocument(ctx context.Context, fileID int64, path, filename, body string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, err := idx.db.ExecContext(ctx, `INSERT INTO docs (file_id, path, filename, body) VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET path = excluded.path, filename = excluded.filename, body = excluded.body`,
		fileID, path, filename, body)
	if err != nil {
		return fmt.Errorf("upsert_document %d: %w", fileID, domain.ErrStore)
	}
	return nil
}

// DeleteDocument implements driven.InvertedIndex.
func (idx *Index) DeleteDocument(ctx context.Context, fileID int64) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := idx.db.ExecContext(ctx, `DELETE FROM docs WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("delete_document %d: %w", fileID, domain.ErrStore)
	}
	return nil
}

// Commit implements driven.InvertedIndex. modernc.org/sqlite in WAL mode
// fsyncs on every committed write already; PRAGMA wal_checkpoint gives an
// explicit durability barrier callers can rely on after commit() returns.
func (idx *Index) Commit(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := idx.db.ExecContext(ctx, `PRAGMA wal_checkpoint(FULL)`); err != nil {
		return fmt.Errorf("commit inverted index: %w", domain.ErrStore)
	}
	return nil
}

var sanitizePattern = regexp.MustCompile(`(?i)"|\*|\(|\)|\bAND\b|\bOR\b|\bNOT\b|\bNEAR\b`)

// sanitizeFTSQuery escapes FTS5 query-syntax metacharacters so an
// arbitrary user string is always treated as a tokenized match rather than
// malformed query syntax, matching vector_ops.go's sanitizeFTSQuery.
func sanitizeFTSQuery(q string) string {
	escaped := sanitizePattern.ReplaceAllStringFunc(q, func(tok string) string {
		return " "
	})
	fields := strings.Fields(escaped)
	if len(fields) == 0 {
		return ""
	}
	for i, f := range fields {
		fields[i] = `"` + f + `"`
	}
	return strings.Join(fields, " OR ")
}

// Search implements driven.InvertedIndex. Never errors on malformed
// syntax — an empty sanitized query simply returns no hits.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]driven.InvertedHit, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, nil
	}

	rows, err := idx.db.QueryContext(ctx,
		`SELECT file_id, bm25(docs_fts, 1.0, 2.0, 1.0) AS raw_score
		 FROM docs_fts WHERE docs_fts MATCH ? ORDER BY raw_score LIMIT ?`,
		sanitized, k)
	if err != nil {
		// Malformed query syntax degrades to "no hits" rather than an error.
		return nil, nil
	}
	defer rows.Close()

	var hits []driven.InvertedHit
	for rows.Next() {
		var fileID int64
		var rawScore float64
		if err := rows.Scan(&fileID, &rawScore); err != nil {
			return nil, fmt.Errorf("scan search row: %w", domain.ErrStore)
		}
		hits = append(hits, driven.InvertedHit{
			FileID: fileID,
			Score:  normalizeBM25(rawScore),
		})
	}
	return hits, rows.Err()
}

// normalizeBM25 maps FTS5's unbounded-negative bm25() score (more negative
// is a better match) onto a positive scale where a larger value is a
// better match, matching the "descending score" contract callers rely on.
// The 1/(1+x/50) shape mirrors vector_ops.go's collectTextResults; unlike
// that helper this one is applied to -raw so order is preserved, not
// inverted.
func normalizeBM25(raw float64) float64 {
	goodness := -raw
	if goodness < 0 {
		goodness = 0
	}
	return 1.0 - 1.0/(1.0+goodness/bm25NormConst)
}

// Close implements driven.InvertedIndex.
func (idx *Index) Close() error {
	return idx.db.Close()
}
